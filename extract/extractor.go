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


package extract

import (
	"context"
	"fmt"

	"github.com/studium-hq/studium/core"
)

// Extraction is the output of resolving a source origin into plain text.
type Extraction struct {
	// Text is the extracted plain text content.
	Text string

	// Metadata carries extractor-specific details (format, page title,
	// content type) merged into the source's metadata on success.
	Metadata map[string]string
}

// Extractor resolves one kind of source origin into plain text.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Kind returns the source kind this extractor handles.
	Kind() core.SourceKind

	// Extract resolves origin into plain text. A failed extraction is a
	// terminal outcome for the source; the returned error's message is
	// recorded on the source record.
	Extract(ctx context.Context, origin string) (*Extraction, error)
}

// Registry dispatches extraction by source kind.
type Registry struct {
	extractors map[core.SourceKind]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[core.SourceKind]Extractor),
	}
}

// Register adds an extractor, replacing any previous one for the same kind.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Kind()] = e
}

// Extract dispatches to the extractor registered for kind.
func (r *Registry) Extract(ctx context.Context, kind core.SourceKind, origin string) (*Extraction, error) {
	e, ok := r.extractors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	return e.Extract(ctx, origin)
}

// DefaultRegistry creates a registry with the built-in extractors for
// text, url, and file sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTextExtractor())
	r.Register(NewURLExtractor())
	r.Register(NewFileExtractor())
	return r
}
