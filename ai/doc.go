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


// Package ai defines the AI service abstractions used by studium.
//
// The package provides interfaces for text embedding, decoupling the rest of
// the system from any particular AI backend. Production code uses the openai
// subpackage, which talks to any OpenAI-compatible API (Ollama, LocalAI,
// vLLM, OpenAI itself). Tests use the mock subpackage.
//
// # Usage
//
// Create a provider from configuration:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "some text")
//
// # Thread Safety
//
// All implementations must be safe for concurrent use; the ingestion
// pipeline embeds segments from multiple worker goroutines.
package ai
