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


package core

import "fmt"

// ValidateSource validates a Source according to domain rules.
//
// Validation rules:
//   - TenantId, CourseId, Title, and Origin must not be empty
//   - Kind and Status must be valid enum values
//
// NOT validated (populated by the pipeline):
//   - RawContent, ChunkCount, ErrorMessage, Metadata
//   - ID (0 is valid from database sequences)
func ValidateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	if source.TenantId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrEmptyTenant)
	}

	if source.CourseId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrEmptyCourse)
	}

	if source.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrEmptyTitle)
	}

	if source.Origin == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrEmptyOrigin)
	}

	if err := ValidateSourceKind(source.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	if err := ValidateSourceStatus(source.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	return nil
}

// ValidateSourceKind validates that a SourceKind has a valid value.
func ValidateSourceKind(kind SourceKind) error {
	switch kind {
	case KindText, KindURL, KindFile:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceKind, kind)
	}
}

// ValidateSourceStatus validates that a SourceStatus has a valid value.
func ValidateSourceStatus(status SourceStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceStatus, status)
	}
}

// ValidateSourceState checks the lifecycle invariants that tie a source's
// nullable fields to its status:
//
//   - PENDING and PROCESSING: RawContent, ChunkCount, ErrorMessage all nil
//   - READY: RawContent set, ChunkCount set and >= 0, ErrorMessage nil
//   - FAILED: RawContent nil, ChunkCount nil, ErrorMessage set
//
// ChunkCount = 0 is a valid READY outcome: extraction succeeded but no
// segment vectorized.
func ValidateSourceState(source *Source) error {
	if source == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	switch source.Status {
	case StatusPending, StatusProcessing:
		if source.RawContent != nil || source.ChunkCount != nil || source.ErrorMessage != nil {
			return fmt.Errorf("%w: %s source carries lifecycle output", ErrInconsistentState, source.Status)
		}
	case StatusReady:
		if source.RawContent == nil {
			return fmt.Errorf("%w: READY source without raw content", ErrInconsistentState)
		}
		if source.ChunkCount == nil || *source.ChunkCount < 0 {
			return fmt.Errorf("%w: READY source without a chunk count", ErrInconsistentState)
		}
		if source.ErrorMessage != nil {
			return fmt.Errorf("%w: READY source with an error message", ErrInconsistentState)
		}
	case StatusFailed:
		if source.ErrorMessage == nil || *source.ErrorMessage == "" {
			return fmt.Errorf("%w: FAILED source without an error message", ErrInconsistentState)
		}
		if source.RawContent != nil || source.ChunkCount != nil {
			return fmt.Errorf("%w: FAILED source carries extraction output", ErrInconsistentState)
		}
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceStatus, source.Status)
	}

	return nil
}
