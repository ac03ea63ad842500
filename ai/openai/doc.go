// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// Any server speaking the OpenAI embeddings protocol works: Ollama, LocalAI,
// vLLM, or OpenAI itself. Authentication uses a placeholder token by default,
// which local servers ignore.
package openai
