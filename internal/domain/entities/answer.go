package entities

// AnswerMethod identifies which resolver branch produced an answer
type AnswerMethod string

const (
	// AnswerMethodDatabaseLookup means a pre-computed QA pair matched
	AnswerMethodDatabaseLookup AnswerMethod = "database_lookup"

	// AnswerMethodRAGLLM means document chunks plus clinical context were
	// handed to a generative model
	AnswerMethodRAGLLM AnswerMethod = "rag_llm"

	// AnswerMethodFallback means the answer was synthesized from
	// structured fields without any model
	AnswerMethodFallback AnswerMethod = "fallback"
)

// Source type tags carried on AnswerSource entries
const (
	SourceTypePreComputed   = "pre_computed"
	SourceTypeDocumentChunk = "document_chunk"
	SourceTypeFallback      = "fallback"
)

// AnswerSource cites one document that contributed to an answer
type AnswerSource struct {
	Document  string  `json:"document"`
	Page      *int    `json:"page,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
	Type      string  `json:"type"`
}

// AnswerResult is the uniform envelope returned by the answer resolver.
// It is constructed per request and never persisted. Confidence is a
// fixed constant per method branch, not a calibrated probability.
type AnswerResult struct {
	Success    bool           `json:"success"`
	Answer     string         `json:"answer,omitempty"`
	Confidence float64        `json:"confidence"`
	Sources    []AnswerSource `json:"sources"`
	Method     AnswerMethod   `json:"method,omitempty"`
	ChunksUsed int            `json:"chunks_used,omitempty"`
	Error      string         `json:"error,omitempty"`
}
