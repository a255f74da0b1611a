package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsage/server/internal/models"
)

type fakeSchema struct{ diagram string }

func (f *fakeSchema) Describe(context.Context) (string, error) { return f.diagram, nil }
func (f *fakeSchema) Invalidate()                              {}

// fakeKnowledge returns per-probe canned answers and records the probes.
type fakeKnowledge struct {
	mu      sync.Mutex
	answers map[string]string
	probes  []string
}

func (f *fakeKnowledge) Retrieve(_ context.Context, query string, _ int) (string, []models.KnowledgeChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, query)
	if text, ok := f.answers[query]; ok {
		return text, []models.KnowledgeChunk{{Text: text, Similarity: 0.9}}, nil
	}
	return NoContextFound, nil, nil
}

func (f *fakeKnowledge) Ingest(context.Context, string, map[string]string) error { return nil }

func TestGatherBundlesSchemaAndKnowledge(t *testing.T) {
	knowledge := &fakeKnowledge{answers: map[string]string{
		"what is round 865?": "rounds hold funding metadata",
	}}
	svc := NewContextService(&fakeSchema{diagram: "type Query { rounds: [Round!]! }"}, knowledge, 5)

	bundle, err := svc.Gather(context.Background(), "what is round 865?")
	require.NoError(t, err)

	assert.Equal(t, "type Query { rounds: [Round!]! }", bundle.Schema)
	assert.Contains(t, bundle.Knowledge, "funding metadata")
	assert.NotContains(t, bundle.Knowledge, NoContextFound, "sentinels are filtered before concatenation")
	assert.Len(t, knowledge.probes, 4, "question plus events/structs/functions probes")
}

func TestGatherAllSentinelsKeepsSentinelBundle(t *testing.T) {
	svc := NewContextService(&fakeSchema{diagram: "type Query {}"}, &fakeKnowledge{}, 5)

	bundle, err := svc.Gather(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, NoContextFound, bundle.Knowledge)
	assert.Empty(t, bundle.Chunks)
}

func TestGatherDeduplicatesChunksAcrossProbes(t *testing.T) {
	shared := "rounds hold funding metadata"
	knowledge := &fakeKnowledge{answers: map[string]string{
		"q":                             shared,
		"events related to: q":          shared,
		"functions related to: q":       shared,
		"data structures related to: q": shared,
	}}
	svc := NewContextService(&fakeSchema{}, knowledge, 5)

	bundle, err := svc.Gather(context.Background(), "q")
	require.NoError(t, err)

	assert.Len(t, bundle.Chunks, 1, "identical chunks from different probes collapse")
}
