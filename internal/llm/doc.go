// Package llm provides the suggestion oracle backed by language model APIs or a
// remote category service. It supports OpenAI, Anthropic, Gemini and a plain
// HTTP suggestion endpoint, with retry logic, rate limiting, and response caching.
package llm
