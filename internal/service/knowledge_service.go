package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/graphsage/server/internal/models"
)

// NoContextFound is the sentinel returned when the store has nothing relevant.
// Callers concatenating context into prompts must filter it out, otherwise
// the sentinel itself pollutes the prompt.
const NoContextFound = "No relevant context found for this query."

// ---- Repository contract ---------------------------------------------------

// KnowledgeRepository exposes vector search and append-only ingestion over
// the pre-embedded chunk store.
type KnowledgeRepository interface {
	VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.KnowledgeChunk, error)
	Insert(ctx context.Context, text string, embedding []float32, metadata map[string]string) error
}

// ---- Service interface + implementation ------------------------------------

// KnowledgeService converts free-text queries into embeddings and performs
// K‑NN searches through the chunk index, and accepts new documents on the
// same path the ingestion pipeline uses.
type KnowledgeService interface {
	// Retrieve returns a prompt-ready context string (or NoContextFound) plus
	// the raw hits that produced it.
	Retrieve(ctx context.Context, query string, k int) (string, []models.KnowledgeChunk, error)
	// Ingest embeds and stores a new document for future retrieval.
	Ingest(ctx context.Context, text string, metadata map[string]string) error
}

type knowledgeService struct {
	repo          KnowledgeRepository
	embedder      Embedder
	minSimilarity float64
}

// NewKnowledgeService wires the repository and embedder.
func NewKnowledgeService(repo KnowledgeRepository, embedder Embedder, minSimilarity float64) KnowledgeService {
	return &knowledgeService{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: minSimilarity,
	}
}

// Retrieve embeds the query, searches the index and composes the context.
func (s *knowledgeService) Retrieve(ctx context.Context, query string, k int) (string, []models.KnowledgeChunk, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.repo.VectorSearch(ctx, vec, k)
	if err != nil {
		return "", nil, fmt.Errorf("vector search failed: %w", err)
	}

	// Drop hits below the similarity floor.
	chunks := hits[:0]
	for _, c := range hits {
		if c.Similarity >= s.minSimilarity {
			chunks = append(chunks, c)
		}
	}

	if len(chunks) == 0 {
		log.Printf("no relevant chunks for query %q (searched %d)", query, len(hits))
		return NoContextFound, nil, nil
	}

	var sb strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&sb, "[%d] (similarity %.3f)\n%s\n\n", i+1, c.Similarity, c.Text)
	}
	return strings.TrimSpace(sb.String()), chunks, nil
}

// Ingest embeds the document and appends it to the store.
func (s *knowledgeService) Ingest(ctx context.Context, text string, metadata map[string]string) error {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}
	if err := s.repo.Insert(ctx, text, vec, metadata); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}
