// Copyright 2025 Studium Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package segment

import (
	"log/slog"
	"strings"

	"github.com/studium-hq/studium/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultChunkSize is the default number of characters per segment.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Segmenter splits extracted text into ordered, bounded segments.
// Segmentation is total: any non-empty text yields at least one segment,
// and it never fails.
type Segmenter interface {
	// Segment splits text into ordered segments. Empty or whitespace-only
	// text yields no segments.
	Segment(text string) []core.Segment
}

// RecursiveSegmenter splits text on semantic boundaries (paragraphs, then
// sentences, then words) using a recursive character splitter.
type RecursiveSegmenter struct {
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

var _ Segmenter = (*RecursiveSegmenter)(nil)

// Option configures a RecursiveSegmenter.
type Option func(*RecursiveSegmenter)

// WithChunkSize sets the segment size in characters.
func WithChunkSize(size int) Option {
	return func(s *RecursiveSegmenter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between segments in characters.
func WithChunkOverlap(overlap int) Option {
	return func(s *RecursiveSegmenter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *RecursiveSegmenter) {
		s.logger = logger
	}
}

// NewRecursiveSegmenter creates a segmenter with the given options.
func NewRecursiveSegmenter(opts ...Option) *RecursiveSegmenter {
	s := &RecursiveSegmenter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default().With("component", "segmenter"),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed segment size
	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 4
	}

	return s
}

// Segment splits text into ordered segments. If the underlying splitter
// fails, the whole text becomes a single segment rather than losing content.
func (s *RecursiveSegmenter) Segment(text string) []core.Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	parts, err := splitter.SplitText(text)
	if err != nil {
		s.logger.Warn("splitter failed, keeping text as a single segment", "err", err)
		return []core.Segment{{Index: 0, Text: text}}
	}

	segments := make([]core.Segment, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, core.Segment{
			Index: len(segments),
			Text:  part,
		})
	}

	if len(segments) == 0 {
		return []core.Segment{{Index: 0, Text: text}}
	}

	return segments
}
