package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsage/server/internal/models"
)

func analyze(t *testing.T, llm LLM) models.Analysis {
	t.Helper()
	svc := NewAnalysisService(llm, time.Second)
	return svc.Analyze(context.Background(), "what is round 865?",
		models.QueryAttempt{Query: "{ rounds { roundMetadata } }", Variables: "{}"},
		`{"rounds":[{"roundMetadata":{}}]}`)
}

func TestAnalyzeParsesRelevanceScore(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"The data answers the question directly.\nRelevance score: 7/10",
	}}
	a := analyze(t, llm)
	assert.Equal(t, 7, a.Relevance)
	assert.Contains(t, a.Text, "answers the question")
}

func TestAnalyzeRelevanceCaseInsensitive(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"fine.\nRELEVANCE SCORE: 3 / 10"}}
	assert.Equal(t, 3, analyze(t, llm).Relevance)
}

func TestAnalyzeDefaultsWhenNoScoreLine(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"No score here at all."}}
	a := analyze(t, llm)
	assert.Equal(t, defaultRelevance, a.Relevance)
	assert.Equal(t, "No score here at all.", a.Text)
}

func TestAnalyzeClampsOutOfRangeScore(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"great.\nRelevance score: 15/10"}}
	assert.Equal(t, 10, analyze(t, llm).Relevance)
}

func TestAnalyzeEmptyResponseFallsBack(t *testing.T) {
	llm := &scriptedLLM{responses: []string{""}}
	a := analyze(t, llm)
	assert.Equal(t, failedAnalysisText, a.Text)
	assert.Zero(t, a.Relevance)
}

func TestAnalyzeEngineErrorFallsBack(t *testing.T) {
	llm := &scriptedLLM{err: assert.AnError}
	a := analyze(t, llm)
	assert.Equal(t, failedAnalysisText, a.Text)
	assert.Zero(t, a.Relevance)
}

func TestAnalyzePromptCarriesRunArtefacts(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"ok.\nRelevance score: 5/10"}}
	svc := NewAnalysisService(llm, time.Second)
	svc.Analyze(context.Background(), "the question",
		models.QueryAttempt{Query: "{ q }", Variables: `{"v":1}`, Explanation: "because"},
		`{"d":true}`)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "the question")
	assert.Contains(t, prompt, "{ q }")
	assert.Contains(t, prompt, `{"v":1}`)
	assert.Contains(t, prompt, "because")
	assert.Contains(t, prompt, `{"d":true}`)
	assert.Contains(t, prompt, "Relevance score: X/10")
}
