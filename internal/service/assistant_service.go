package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphsage/server/internal/models"
)

// AssistantService is the top-level entry for one question: run the loop,
// then — only on success — analyze the data. Its answer is always one of
// {successful analysis, exhausted-with-diagnostics}; unexpected faults
// propagate as errors for the transport layer to report.
type AssistantService interface {
	Ask(ctx context.Context, question string) (models.AskResponse, error)
}

type assistantService struct {
	query    QueryService
	analyzer AnalysisService
}

// NewAssistantService wires the loop and the analyzer.
func NewAssistantService(query QueryService, analyzer AnalysisService) AssistantService {
	return &assistantService{query: query, analyzer: analyzer}
}

// Ask answers one question end to end.
func (s *assistantService) Ask(ctx context.Context, question string) (models.AskResponse, error) {
	if strings.TrimSpace(question) == "" {
		return models.AskResponse{}, fmt.Errorf("question cannot be empty")
	}

	outcome, err := s.query.Run(ctx, question)
	if err != nil {
		return models.AskResponse{}, err
	}

	resp := models.AskResponse{
		Succeeded: outcome.Succeeded,
		Query:     outcome.Attempt.Query,
		Variables: outcome.Attempt.Variables,
		Attempts:  outcome.Attempts,
	}

	if !outcome.Succeeded {
		resp.Errors = outcome.Result.Errors
		return resp, nil
	}

	resp.Data = outcome.Result.Data

	analysis := s.analyzer.Analyze(ctx, question, outcome.Attempt, outcome.Result.Data)
	resp.Analysis = analysis.Text
	resp.Relevance = analysis.Relevance
	return resp, nil
}
