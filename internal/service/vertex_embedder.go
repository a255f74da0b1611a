package service

import (
	"context"
	"fmt"
	"os"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder generates embeddings through a Vertex AI prediction
// endpoint. The model is configurable; it must match whatever model the
// ingestion pipeline used to embed the knowledge collection, or similarity
// scores are meaningless.
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexEmbedder creates a new embedder for the given project/location/model.
func NewVertexEmbedder(ctx context.Context, projectID, location, model string) (*VertexEmbedder, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	modelName := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		projectID, location, model)

	return &VertexEmbedder{
		client:    client,
		modelName: modelName,
	}, nil
}

// Embed generates an embedding vector for the input text using
// task_type = "RETRIEVAL_QUERY" so it aligns with document embeddings.
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	}

	resp, err := v.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}

	prediction := resp.Predictions[0].GetStructValue()
	embeddings := prediction.GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()

	result := make([]float32, len(values))
	for i, v := range values {
		result[i] = float32(v.GetNumberValue())
	}

	return result, nil
}

// Close releases the Vertex AI client resources.
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
