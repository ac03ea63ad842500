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


// Package search provides semantic search over vectorized source segments.
//
// The Searcher type embeds a text query, finds the closest segment
// embeddings within a tenant, and resolves each hit back to its parent
// source. Hits whose source is missing or not yet READY are dropped, and
// segments containing every query term receive a verbatim match boost
// on top of their similarity score.
package search
