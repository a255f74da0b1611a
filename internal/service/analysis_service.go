package service

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/graphsage/server/internal/models"
)

// failedAnalysisText is returned when the completion engine gives us nothing
// to work with. Analysis failure never invalidates a successful execution.
const failedAnalysisText = "Failed to analyze the query results."

// defaultRelevance is used when the response carries no parseable score line.
// The score is advisory, so a missing one is not worth failing the analysis.
const defaultRelevance = 5

var relevanceRe = regexp.MustCompile(`(?i)relevance score:\s*(\d+)\s*/\s*10`)

// AnalysisService turns a successful run's data back into natural language.
type AnalysisService interface {
	Analyze(ctx context.Context, question string, attempt models.QueryAttempt, data string) models.Analysis
}

type analysisService struct {
	llm         LLM
	callTimeout time.Duration
}

// NewAnalysisService wires the completion engine.
func NewAnalysisService(llm LLM, callTimeout time.Duration) AnalysisService {
	return &analysisService{llm: llm, callTimeout: callTimeout}
}

// Analyze never returns an error: any failure degrades to the fixed fallback
// with relevance 0, because by the time we are here the run has already
// produced data and must be reported as such.
func (s *analysisService) Analyze(ctx context.Context, question string, attempt models.QueryAttempt, data string) models.Analysis {
	prompt := buildAnalysisPrompt(question, attempt, data)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	text, err := s.llm.GenerateResponse(callCtx, prompt)
	if err != nil {
		log.Printf("analysis generation failed: %v", err)
		return models.Analysis{Text: failedAnalysisText, Relevance: 0}
	}
	if text == "" {
		log.Printf("analysis generation returned empty response")
		return models.Analysis{Text: failedAnalysisText, Relevance: 0}
	}

	return models.Analysis{
		Text:      text,
		Relevance: parseRelevance(text),
	}
}

// parseRelevance extracts "Relevance score: X/10" and clamps X to [0,10].
func parseRelevance(text string) int {
	m := relevanceRe.FindStringSubmatch(text)
	if m == nil {
		return defaultRelevance
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultRelevance
	}
	if n > 10 {
		return 10
	}
	if n < 0 {
		return 0
	}
	return n
}
