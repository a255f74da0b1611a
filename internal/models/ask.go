package models

// AskRequest is the payload for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the terminal answer for one question. On success Data and
// the analysis fields are populated; on exhaustion Errors carries the last
// attempt's diagnostics so the failure is never silently discarded.
type AskResponse struct {
	Succeeded bool     `json:"succeeded"`
	Query     string   `json:"query,omitempty"`
	Variables string   `json:"variables,omitempty"`
	Data      string   `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Attempts  int      `json:"attempts"`
	Analysis  string   `json:"analysis,omitempty"`
	Relevance int      `json:"relevance,omitempty"`
}

// SearchRequest is the payload for GET /search (query parameters).
type SearchRequest struct {
	Query string `json:"q" query:"q"` // full‑text query
	TopK  int    `json:"k" query:"k"` // optional; default handled in handler
}
