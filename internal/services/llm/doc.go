// Package llm wraps the optional language model used for two jobs the
// pattern rules can't always do: parsing messy release filenames and
// shortening names that break the path-length ceiling. Ollama and
// OpenAI-compatible endpoints are supported; both are forced into JSON
// output.
package llm
