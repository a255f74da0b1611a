package service

import "context"

// Dummy implementations for local development without GCP credentials.

type dummyEmbedder struct{}

func (d dummyEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, 768), nil
}

func NewDummyEmbedder() Embedder {
	return dummyEmbedder{}
}

type dummyLLM struct{}

func (d dummyLLM) GenerateResponse(context.Context, string) (string, error) {
	return "<query>{ __typename }</query>\n<variables>{}</variables>\n<explanation>placeholder</explanation>", nil
}

func NewDummyLLM() LLM {
	return dummyLLM{}
}
