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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSource indicates a Source failed validation.
	ErrInvalidSource = errors.New("invalid source")

	// ErrEmptyTenant indicates the TenantId field is empty.
	ErrEmptyTenant = errors.New("tenant id cannot be empty")

	// ErrEmptyCourse indicates the CourseId field is empty.
	ErrEmptyCourse = errors.New("course id cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyOrigin indicates the Origin field is empty.
	ErrEmptyOrigin = errors.New("origin cannot be empty")

	// ErrInvalidSourceKind indicates an invalid SourceKind value.
	ErrInvalidSourceKind = errors.New("invalid source kind")

	// ErrInvalidSourceStatus indicates an invalid SourceStatus value.
	ErrInvalidSourceStatus = errors.New("invalid source status")

	// ErrInconsistentState indicates a Source whose lifecycle fields do not
	// match its status (for example a FAILED source without an error message).
	ErrInconsistentState = errors.New("inconsistent source state")
)
