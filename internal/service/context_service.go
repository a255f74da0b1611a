package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/graphsage/server/internal/models"
)

// ContextService assembles the ContextBundle for one question: the schema
// diagram plus retrieved knowledge. The schema fetch and the retrieval
// probes are independent, side-effect-free reads, so they fan out in
// parallel; everything downstream of the bundle is strictly sequential.
type ContextService interface {
	Gather(ctx context.Context, question string) (models.ContextBundle, error)
}

type contextService struct {
	schema    SchemaService
	knowledge KnowledgeService
	topK      int
}

// NewContextService wires the schema and knowledge services.
func NewContextService(schema SchemaService, knowledge KnowledgeService, topK int) ContextService {
	return &contextService{
		schema:    schema,
		knowledge: knowledge,
		topK:      topK,
	}
}

// Gather fans out the schema fetch and three retrieval probes (the question
// angled at events, data structures and functions, so different regions of
// the embedding space get a chance to surface). Sentinel "no context" answers
// are filtered before concatenation.
func (s *contextService) Gather(ctx context.Context, question string) (models.ContextBundle, error) {
	probes := []string{
		question,
		fmt.Sprintf("events related to: %s", question),
		fmt.Sprintf("data structures related to: %s", question),
		fmt.Sprintf("functions related to: %s", question),
	}

	var schema string
	sections := make([]string, len(probes))
	chunkSets := make([][]models.KnowledgeChunk, len(probes))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schema, err = s.schema.Describe(gctx)
		return err
	})
	for i, probe := range probes {
		i, probe := i, probe
		g.Go(func() error {
			text, chunks, err := s.knowledge.Retrieve(gctx, probe, s.topK)
			if err != nil {
				return err
			}
			sections[i] = text
			chunkSets[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.ContextBundle{}, fmt.Errorf("context gathering failed: %w", err)
	}

	// Merge, dropping sentinels and chunks we have already seen.
	seen := map[string]bool{}
	var parts []string
	var chunks []models.KnowledgeChunk
	for i, section := range sections {
		if section == "" || section == NoContextFound {
			continue
		}
		parts = append(parts, section)
		for _, c := range chunkSets[i] {
			if !seen[c.Text] {
				seen[c.Text] = true
				chunks = append(chunks, c)
			}
		}
	}

	knowledge := strings.Join(parts, "\n\n")
	if knowledge == "" {
		knowledge = NoContextFound
	}

	return models.ContextBundle{
		Schema:    schema,
		Knowledge: knowledge,
		Chunks:    chunks,
	}, nil
}
