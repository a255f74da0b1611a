package service

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexLLM implements the LLM interface using Google's Vertex AI.
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexLLM creates a new Vertex AI LLM client for the given project,
// location and model. Temperature is kept low: query synthesis needs the
// model to follow the output contract, not to be creative.
func NewVertexLLM(ctx context.Context, projectID, location, modelName string) (*VertexLLM, error) {
	// Get credentials from environment or service account file.
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexLLM{
		client: client,
		model:  model,
	}, nil
}

// GenerateResponse generates a response using the Vertex AI model.
func (l *VertexLLM) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		// Not an error: the loop charges this against the attempt budget.
		return "", nil
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// Close closes the Vertex AI client.
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
