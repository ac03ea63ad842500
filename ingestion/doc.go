// Package ingestion provides pipeline orchestration for processing knowledge sources.
//
// The Pipeline type manages the source lifecycle:
//   - Creating PENDING source records synchronously
//   - Extracting, segmenting, and vectorizing content asynchronously
//   - Advancing the persisted status through PENDING -> PROCESSING -> READY/FAILED
//
// Processing is performed concurrently using worker pools. Extraction
// failures mark the source FAILED; individual segment vectorization
// failures only lower the source's chunk count. Sources abandoned by a
// crash are recovered by SweepStalled.
package ingestion
