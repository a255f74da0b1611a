package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/graphsage/server/internal/graphql"
	"github.com/graphsage/server/internal/models"
)

// TruncationMarker is appended when a payload is cut at the word ceiling.
// A truncated payload is no longer valid JSON; downstream consumers get it
// for prompting, not for parsing.
const TruncationMarker = "... [truncated]"

// errMutationsNotAllowed is the fixed guard message. The guard is a safety
// invariant: a mutation never reaches the endpoint unless explicitly enabled.
const errMutationsNotAllowed = "mutations are not allowed against this endpoint"

// Executor runs one QueryAttempt against the live endpoint. Failures are
// captured as data in the result, never returned as errors — the loop feeds
// them back into repair prompts.
type Executor interface {
	Execute(ctx context.Context, query, variables string) models.ExecutionResult
}

type executorService struct {
	gql            *graphql.Client
	archive        KnowledgeService // nil disables the successful-query archive
	allowMutations bool
	maxWords       int
	callTimeout    time.Duration
}

// NewExecutorService wires the GraphQL client and the optional archive sink.
func NewExecutorService(gql *graphql.Client, archive KnowledgeService, allowMutations bool, maxWords int, callTimeout time.Duration) Executor {
	return &executorService{
		gql:            gql,
		archive:        archive,
		allowMutations: allowMutations,
		maxWords:       maxWords,
		callTimeout:    callTimeout,
	}
}

// Execute classifies, guards, posts and normalizes. Every path yields a
// fresh ExecutionResult; nothing here is retried.
func (s *executorService) Execute(ctx context.Context, query, variables string) models.ExecutionResult {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		// Syntactically broken queries never reach the endpoint; the parse
		// error is better repair signal than a server 400.
		return failure(fmt.Sprintf("invalid GraphQL syntax: %v", err))
	}

	if !s.allowMutations {
		for _, op := range doc.Operations {
			if op.Operation == ast.Mutation {
				return failure(errMutationsNotAllowed)
			}
		}
	}

	var vars map[string]any
	if strings.TrimSpace(variables) != "" {
		if err := json.Unmarshal([]byte(variables), &vars); err != nil {
			return failure(fmt.Sprintf("invalid variables JSON: %v", err))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.gql.Execute(callCtx, query, vars)
	if err != nil {
		return failure(err.Error())
	}

	if len(resp.Errors) > 0 {
		res := models.ExecutionResult{
			Success: false,
			Errors:  make([]string, len(resp.Errors)),
		}
		for i, e := range resp.Errors {
			res.Errors[i] = string(e)
		}
		// Keep whatever partial data the server produced alongside errors.
		if len(resp.Data) > 0 && string(resp.Data) != "null" {
			res.Data = string(resp.Data)
		}
		return res
	}

	data := truncateWords(string(resp.Data), s.maxWords)
	s.archiveSuccess(query, variables, data)

	return models.ExecutionResult{
		Success: true,
		Data:    data,
	}
}

// archiveSuccess writes query+result back into the knowledge store so future
// runs can retrieve proven queries. Failures are logged and swallowed: the
// archive must never affect the returned result.
func (s *executorService) archiveSuccess(query, variables, data string) {
	if s.archive == nil {
		return
	}

	doc := fmt.Sprintf("<query>\n%s\n</query>\n<result>\n%s\n</result>", query, data)
	meta := map[string]string{"kind": "successful_query", "variables": variables}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	if err := s.archive.Ingest(ctx, doc, meta); err != nil {
		log.Printf("failed to archive successful query: %v", err)
	}
}

func failure(msgs ...string) models.ExecutionResult {
	return models.ExecutionResult{Success: false, Errors: msgs}
}

// truncateWords caps s at max whitespace-separated words, appending
// TruncationMarker when anything was dropped. Truncation is lossy; a string
// already at or under the ceiling passes through untouched, and re-truncating
// previously truncated output reproduces it exactly.
func truncateWords(s string, max int) string {
	if max <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ") + " " + TruncationMarker
}
