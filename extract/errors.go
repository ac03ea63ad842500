package extract

import "errors"

var (
	// ErrUnsupportedKind indicates no extractor is registered for a source kind.
	ErrUnsupportedKind = errors.New("unsupported source kind")

	// ErrUnsupportedFormat indicates the origin points at a format no
	// extractor understands.
	ErrUnsupportedFormat = errors.New("unsupported content format")

	// ErrEmptyOrigin indicates the origin resolved to no content at all.
	ErrEmptyOrigin = errors.New("origin resolved to empty content")

	// ErrFetchFailed indicates a remote origin could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
)
