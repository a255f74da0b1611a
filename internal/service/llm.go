package service

import "context"

// LLM defines the interface for language model interactions. An empty string
// with a nil error is a legal response and callers must treat it as a failed
// generation, not retry the call for free.
type LLM interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Embedder defines the interface for text embedding services.
type Embedder interface {
	// Embed converts a text string into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)
}
