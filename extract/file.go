package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studium-hq/studium/core"
)

const defaultMaxFileSize = 16 << 20 // 16 MiB

// FileExtractor reads uploaded documents from the local filesystem.
type FileExtractor struct {
	maxFileSize int64
}

var _ Extractor = (*FileExtractor)(nil)

// FileOption is a functional option for configuring a FileExtractor.
type FileOption func(*FileExtractor)

// WithMaxFileSize sets the maximum file size read.
func WithMaxFileSize(n int64) FileOption {
	return func(e *FileExtractor) {
		e.maxFileSize = n
	}
}

// NewFileExtractor creates a new FileExtractor.
func NewFileExtractor(opts ...FileOption) *FileExtractor {
	e := &FileExtractor{
		maxFileSize: defaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind returns core.KindFile.
func (e *FileExtractor) Kind() core.SourceKind {
	return core.KindFile
}

// Extract reads the file at origin and converts it to plain text based on
// its extension. Supported: .txt, .md, .markdown, .html, .htm.
func (e *FileExtractor) Extract(ctx context.Context, origin string) (*Extraction, error) {
	ext := strings.ToLower(filepath.Ext(origin))

	switch ext {
	case ".txt", ".md", ".markdown", ".html", ".htm":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	info, err := os.Stat(origin)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", origin, err)
	}
	if info.Size() > e.maxFileSize {
		return nil, fmt.Errorf("%s exceeds maximum file size (%d bytes)", origin, e.maxFileSize)
	}

	data, err := os.ReadFile(origin)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", origin, err)
	}

	metadata := map[string]string{
		"format":    "file",
		"file_name": filepath.Base(origin),
	}

	var text string
	switch ext {
	case ".html", ".htm":
		raw := string(data)
		if title := htmlTitle(raw); title != "" {
			metadata["page_title"] = title
		}
		text = stripHTML(raw)
	default:
		text = strings.TrimSpace(string(data))
	}

	if text == "" {
		return nil, ErrEmptyOrigin
	}

	return &Extraction{
		Text:     text,
		Metadata: metadata,
	}, nil
}
