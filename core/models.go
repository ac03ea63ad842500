package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentDigest returns a hex-encoded BLAKE2b digest of text.
// The pipeline records it in source metadata so identical extractions
// can be recognized across runs.
func ContentDigest(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// SourceKind identifies how a source's origin is interpreted.
type SourceKind int

const (
	// KindText is inline text; the origin is the literal content.
	KindText SourceKind = iota + 1
	// KindURL is a remote page; the origin is a URL to fetch.
	KindURL
	// KindFile is an uploaded document; the origin is a file path.
	KindFile
)

// String returns the wire name of the kind.
func (k SourceKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// ParseSourceKind parses a wire name into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "url":
		return KindURL, nil
	case "file":
		return KindFile, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSourceKind, s)
	}
}

// SourceStatus is the lifecycle state of a source.
// PENDING -> PROCESSING -> {READY | FAILED}; READY and FAILED are terminal.
type SourceStatus int

const (
	// StatusPending means the source is inserted but not yet picked up.
	StatusPending SourceStatus = iota + 1
	// StatusProcessing means the background pipeline has claimed the source.
	StatusProcessing
	// StatusReady means extraction succeeded; the source is readable and
	// ChunkCount of its segments were vectorized (possibly zero).
	StatusReady
	// StatusFailed means extraction failed; ErrorMessage holds the reason.
	StatusFailed
)

// String returns the persisted status name. These names are the durable
// contract other subsystems rely on.
func (s SourceStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusProcessing:
		return "PROCESSING"
	case StatusReady:
		return "READY"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("SourceStatus(%d)", int(s))
	}
}

// Terminal reports whether no further transition can leave this status.
func (s SourceStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Source is one ingested piece of course content and its processing lifecycle.
// RawContent, ChunkCount, and ErrorMessage are nil until the pipeline reaches
// the state that populates them; see ValidateSourceState for the invariants.
type Source struct {
	Id           ID
	TenantId     string
	CourseId     string
	Title        string
	Kind         SourceKind
	Origin       string
	Status       SourceStatus
	RawContent   *string
	ChunkCount   *int
	ErrorMessage *string
	Metadata     map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SourcePatch is the payload of a guarded status transition write.
// The patch replaces the lifecycle fields wholesale: a transition always
// carries the complete outcome, never a partial one.
type SourcePatch struct {
	Status       SourceStatus
	RawContent   *string
	ChunkCount   *int
	ErrorMessage *string
	Metadata     map[string]string
}

// Segment is a bounded slice of extracted text, indexed within its source.
// Segments are transient: they exist only between segmentation and
// vectorization and are never persisted with their own lifecycle.
type Segment struct {
	Index int
	Text  string
}

// SegmentKey deterministically encodes (sourceId, segmentIndex) as the
// stable vectorization key, so re-processing a source is idempotent
// per segment.
func SegmentKey(sourceID ID, index int) string {
	return fmt.Sprintf("%d:%d", sourceID, index)
}

// ParseSegmentKey decodes a segment key back into (sourceId, segmentIndex).
func ParseSegmentKey(key string) (ID, int, error) {
	var (
		sourceID uint64
		index    int
	)
	if _, err := fmt.Sscanf(key, "%d:%d", &sourceID, &index); err != nil {
		return 0, 0, fmt.Errorf("malformed segment key %q: %w", key, err)
	}
	return ID(sourceID), index, nil
}

// Embedding is the persisted output of vectorizing one segment.
// Key is SegmentKey(SourceId, SegmentIndex) and doubles as the opaque
// embedding reference handed back by the vectorizer.
type Embedding struct {
	Key          string
	SourceId     ID
	SegmentIndex int
	Text         string
	Vector       []float32
	InsertedAt   time.Time
}

// SegmentMatch is an embedding hit from vector similarity search.
type SegmentMatch struct {
	Embedding *Embedding
	Score     float32
}
