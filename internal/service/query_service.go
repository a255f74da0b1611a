package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/graphsage/server/internal/models"
)

// QueryService is the generate→execute→repair loop. One call to Run is one
// bounded run: at most maxAttempts generations, each followed by at most one
// execution, strictly sequential — attempt N+1's prompt quotes attempt N's
// failure, so nothing here is ever in flight twice.
type QueryService interface {
	Run(ctx context.Context, question string) (models.RunOutcome, error)
}

type queryService struct {
	llm             LLM
	executor        Executor
	contexts        ContextService
	maxAttempts     int
	callTimeout     time.Duration
	refreshOnRepair bool
}

// NewQueryService wires the loop's collaborators. maxAttempts must be ≥ 1;
// config guarantees that before we get here.
func NewQueryService(llm LLM, executor Executor, contexts ContextService, maxAttempts int, callTimeout time.Duration, refreshOnRepair bool) QueryService {
	return &queryService{
		llm:             llm,
		executor:        executor,
		contexts:        contexts,
		maxAttempts:     maxAttempts,
		callTimeout:     callTimeout,
		refreshOnRepair: refreshOnRepair,
	}
}

// Run drives the loop to one of its two terminal states. The returned error
// is reserved for faults outside the loop's recovery model (context
// gathering broke, the completion engine call itself errored, the caller
// cancelled); generation and execution failures are data, not errors.
func (s *queryService) Run(ctx context.Context, question string) (models.RunOutcome, error) {
	bundle, err := s.contexts.Gather(ctx, question)
	if err != nil {
		return models.RunOutcome{}, err
	}

	var (
		history []models.AttemptRecord
		attempt models.QueryAttempt
		result  models.ExecutionResult
	)

	for i := 1; i <= s.maxAttempts; i++ {
		// Externally-injected cancellation is honored between iterations,
		// never mid-attempt.
		if err := ctx.Err(); err != nil {
			return models.RunOutcome{}, err
		}

		var prompt string
		if i == 1 {
			prompt = buildGenerationPrompt(question, bundle)
		} else {
			if s.refreshOnRepair {
				if fresh, err := s.contexts.Gather(ctx, question); err == nil {
					bundle = fresh
				} else {
					log.Printf("context refresh before attempt %d failed, reusing previous bundle: %v", i, err)
				}
			}
			prompt = buildRepairPrompt(question, bundle, attempt, result)
		}

		text, err := s.generate(ctx, prompt)
		if err != nil {
			return models.RunOutcome{}, fmt.Errorf("completion engine failed on attempt %d: %w", i, err)
		}

		parsed, ok := parseAttempt(text)
		parsed.AttemptIndex = i
		if !ok {
			// No query in the output. This still consumes one unit of the
			// budget; the raw text is preserved as the explanation so the
			// next repair prompt sees the formatting failure as evidence.
			parsed.Explanation = text
			attempt = parsed
			result = models.ExecutionResult{
				Success: false,
				Errors:  []string{"the model response did not contain a <query> section"},
			}
			history = append(history, models.AttemptRecord{Attempt: attempt, Result: result})
			log.Printf("attempt %d/%d: generation produced no query", i, s.maxAttempts)
			continue
		}

		attempt = parsed
		result = s.executor.Execute(ctx, attempt.Query, attempt.Variables)
		history = append(history, models.AttemptRecord{Attempt: attempt, Result: result})

		if result.Success {
			log.Printf("attempt %d/%d: query succeeded", i, s.maxAttempts)
			return models.RunOutcome{
				Succeeded: true,
				Attempt:   attempt,
				Result:    result,
				Attempts:  i,
				History:   history,
			}, nil
		}
		log.Printf("attempt %d/%d: execution failed: %v", i, s.maxAttempts, result.Errors)
	}

	// Budget exhausted. The last attempt and its errors travel out for
	// diagnostic display; they are never silently discarded.
	return models.RunOutcome{
		Succeeded: false,
		Attempt:   attempt,
		Result:    result,
		Attempts:  s.maxAttempts,
		History:   history,
	}, nil
}

// generate calls the completion engine under the per-call deadline.
func (s *queryService) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.llm.GenerateResponse(callCtx, prompt)
}
