// Package openai implements the ai service interfaces against
// OpenAI-compatible HTTP APIs.
//
// The implementations work with any server speaking the OpenAI wire format,
// including local runtimes like Ollama, LocalAI, and vLLM. Authentication
// uses a placeholder token by default, which local services ignore.
//
// Three services are provided:
//
//   - Embedder: text embeddings via the embeddings endpoint
//   - EntityExtractor: entity/relation extraction via chat with JSON mode
//   - AnswerGenerator: grounded answer generation via chat
//
// The extractor requests strict JSON output at temperature 0, strips
// markdown fences, repairs common formatting mistakes, and retries parsing
// up to three times before reporting ai.ErrMalformedExtraction.
package openai
