package extract

import (
	"context"
	"strings"

	"github.com/studium-hq/studium/core"
)

// TextExtractor handles inline text sources: the origin is the content.
type TextExtractor struct{}

var _ Extractor = (*TextExtractor)(nil)

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Kind returns core.KindText.
func (e *TextExtractor) Kind() core.SourceKind {
	return core.KindText
}

// Extract returns the origin itself, trimmed.
func (e *TextExtractor) Extract(ctx context.Context, origin string) (*Extraction, error) {
	text := strings.TrimSpace(origin)
	if text == "" {
		return nil, ErrEmptyOrigin
	}
	return &Extraction{
		Text:     text,
		Metadata: map[string]string{"format": "text"},
	}, nil
}
