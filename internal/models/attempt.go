package models

// QueryAttempt is one generated query candidate within a run. Variables are
// kept in their serialized string form; the executor deserializes them right
// before the HTTP call so malformed JSON surfaces as an execution failure.
type QueryAttempt struct {
	Query        string `json:"query"`
	Variables    string `json:"variables,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
	AttemptIndex int    `json:"attempt_index"` // 1-based, ≤ the configured budget
}

// ExecutionResult is the outcome of running one QueryAttempt against the
// endpoint. Transport-level and GraphQL-level failures are normalized into
// the same shape: Success=false plus the raw error detail serialized as text.
// A result is never mutated after the executor returns it.
type ExecutionResult struct {
	Success bool     `json:"success"`
	Data    string   `json:"data,omitempty"` // serialized payload, may carry a truncation marker
	Errors  []string `json:"errors,omitempty"`
}

// AttemptRecord pairs an attempt with its result. The loop keeps one record
// per attempt so repair prompts can quote the previous failure verbatim.
type AttemptRecord struct {
	Attempt QueryAttempt    `json:"attempt"`
	Result  ExecutionResult `json:"result"`
}

// RunOutcome is the terminal state of one loop invocation: either the run
// succeeded, or the attempt budget is exhausted. There is no third state.
type RunOutcome struct {
	Succeeded bool            `json:"succeeded"`
	Attempt   QueryAttempt    `json:"attempt"` // final attempt, successful or last failed
	Result    ExecutionResult `json:"result"`
	Attempts  int             `json:"attempts"`
	History   []AttemptRecord `json:"history,omitempty"`
}
