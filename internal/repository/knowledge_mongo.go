package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/graphsage/server/internal/models"
)

// KnowledgeMongo backs the Knowledge Retriever with a single Atlas collection
// of pre-embedded text chunks.
//
// Expected schema:
//
//	knowledge
//	  { _id: string, text: string, embedding: []float32, metadata: map[string]string, created_at }
type KnowledgeMongo struct {
	coll      *mongo.Collection
	vectorIdx string // name of the Atlas Vector Search index
}

// NewKnowledgeRepository wires the collection.
func NewKnowledgeRepository(db *mongo.Database, collection string) *KnowledgeMongo {
	return &KnowledgeMongo{
		coll:      db.Collection(collection),
		vectorIdx: "knowledge_index",
	}
}

// VectorSearch performs a K‑NN search across chunk embeddings and returns the
// hits ordered by similarity, best first.
func (r *KnowledgeMongo) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.KnowledgeChunk, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.vectorIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "embedding"},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.M{"$meta": "vectorSearchScore"}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		Text     string            `bson:"text"`
		Metadata map[string]string `bson:"metadata"`
		Score    float64           `bson:"score"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	chunks := make([]models.KnowledgeChunk, len(docs))
	for i, d := range docs {
		chunks[i] = models.KnowledgeChunk{
			Text:       d.Text,
			Similarity: d.Score,
			Metadata:   d.Metadata,
		}
	}
	return chunks, nil
}

// Insert appends a new chunk keyed by a fresh UUID. Writes never overwrite an
// existing document, so concurrent runs archiving results cannot clobber each
// other.
func (r *KnowledgeMongo) Insert(ctx context.Context, text string, embedding []float32, metadata map[string]string) error {
	doc := bson.M{
		"_id":        uuid.NewString(),
		"text":       text,
		"embedding":  embedding,
		"metadata":   metadata,
		"created_at": time.Now().UTC(),
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
