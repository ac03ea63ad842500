// Package reembed provides functionality for regenerating the vectors of
// already-ingested source segments with a new or updated embedding model.
//
// This package supports batch processing of segments, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search.
package reembed
