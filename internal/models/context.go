package models

// KnowledgeChunk is one retrieved snippet of documentation or source code
// together with its vector-search similarity.
type KnowledgeChunk struct {
	Text       string            `json:"text"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ContextBundle aggregates everything the generation prompt needs besides the
// question itself: the schema description and the retrieved knowledge.
// Knowledge is the prompt-ready concatenation with the empty-result sentinel
// already filtered out; Chunks keeps the raw hits for callers that want them.
type ContextBundle struct {
	Schema    string           `json:"schema"`
	Knowledge string           `json:"knowledge"`
	Chunks    []KnowledgeChunk `json:"chunks,omitempty"`
}

// Analysis is the Result Analyzer's verdict on a successful run. Relevance is
// advisory, clamped to [0,10]; it never gates correctness.
type Analysis struct {
	Text      string `json:"analysis"`
	Relevance int    `json:"relevance"`
}
