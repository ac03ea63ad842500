package badger

import (
	"encoding/binary"
	"time"

	"github.com/studium-hq/studium/core"
)

// Key prefixes for different data types
const (
	sourceRecordPrefix = "srcrec:"
	sourceCoursePrefix = "srccrs:"
	sourceIDSeq        = "srcseq"
	embeddingPrefix    = "embrec:"
)

// appendScopedString appends a caller-supplied id as a BigEndian uint16
// length followed by the raw bytes. Tenant and course ids carry arbitrary
// characters, so a plain delimiter would let an id containing the delimiter
// escape its scope during prefix iteration.
func appendScopedString(buf []byte, s string) []byte {
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(s)))
	buf = append(buf, length[:]...)
	return append(buf, s...)
}

// appendUint64 appends a numeric component in BigEndian order so
// lexicographic sort matches numeric order.
func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// makeSourceKey generates a key for a source by tenant and ID.
func makeSourceKey(tenantID string, id core.ID) []byte {
	buf := appendScopedString([]byte(sourceRecordPrefix), tenantID)
	return appendUint64(buf, uint64(id))
}

// makeSourceScanPrefix generates the prefix covering all source records.
func makeSourceScanPrefix() []byte {
	return []byte(sourceRecordPrefix)
}

// makeCourseKey generates a composite key for the course index.
// Format: prefix, tenant, course, then createdAt and id.
func makeCourseKey(tenantID, courseID string, createdAt time.Time, id core.ID) []byte {
	buf := makeCoursePrefix(tenantID, courseID)
	buf = appendUint64(buf, uint64(createdAt.UnixMicro()))
	return appendUint64(buf, uint64(id))
}

// makeCoursePrefix generates the iteration prefix for a course's index entries.
func makeCoursePrefix(tenantID, courseID string) []byte {
	buf := appendScopedString([]byte(sourceCoursePrefix), tenantID)
	return appendScopedString(buf, courseID)
}

// makeEmbeddingKey generates a key for a segment embedding.
// Format: prefix, tenant, then sourceID and index in BigEndian so
// embeddings of a source iterate in segment order.
func makeEmbeddingKey(tenantID string, sourceID core.ID, index int) []byte {
	return appendUint64(makeSourceEmbeddingPrefix(tenantID, sourceID), uint64(index))
}

// makeSourceEmbeddingPrefix generates the iteration prefix for a source's embeddings.
func makeSourceEmbeddingPrefix(tenantID string, sourceID core.ID) []byte {
	return appendUint64(makeTenantEmbeddingPrefix(tenantID), uint64(sourceID))
}

// makeTenantEmbeddingPrefix generates the iteration prefix for all embeddings
// of a tenant.
func makeTenantEmbeddingPrefix(tenantID string) []byte {
	return appendScopedString([]byte(embeddingPrefix), tenantID)
}
