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
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studium-hq/studium/core"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodySize  = 8 << 20 // 8 MiB
)

// URLExtractor fetches remote pages and strips them to plain text.
type URLExtractor struct {
	client      *http.Client
	maxBodySize int64
}

var _ Extractor = (*URLExtractor)(nil)

// URLOption is a functional option for configuring a URLExtractor.
type URLOption func(*URLExtractor)

// WithHTTPClient sets the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) URLOption {
	return func(e *URLExtractor) {
		e.client = client
	}
}

// WithMaxBodySize sets the maximum number of response bytes read.
func WithMaxBodySize(n int64) URLOption {
	return func(e *URLExtractor) {
		e.maxBodySize = n
	}
}

// NewURLExtractor creates a new URLExtractor.
func NewURLExtractor(opts ...URLOption) *URLExtractor {
	e := &URLExtractor{
		client:      &http.Client{Timeout: defaultFetchTimeout},
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind returns core.KindURL.
func (e *URLExtractor) Kind() core.SourceKind {
	return core.KindURL
}

// Extract fetches the origin URL and converts the response to plain text.
// HTML responses are stripped to text; anything else is treated as plain text.
func (e *URLExtractor) Extract(ctx context.Context, origin string) (*Extraction, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q not supported", ErrFetchFailed, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	metadata := map[string]string{
		"format":       "url",
		"content_type": contentType,
	}

	var text string
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml+xml") {
		raw := string(body)
		if title := htmlTitle(raw); title != "" {
			metadata["page_title"] = title
		}
		text = stripHTML(raw)
	} else {
		text = strings.TrimSpace(string(body))
	}

	if text == "" {
		return nil, ErrEmptyOrigin
	}

	return &Extraction{
		Text:     text,
		Metadata: metadata,
	}, nil
}
