package providers

import (
	"context"
	"errors"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// ErrLLMUnavailable is returned when no generative backend is reachable.
// The answer resolver treats every LLM error as a signal to fall back,
// but callers probing availability can match this one explicitly.
var ErrLLMUnavailable = errors.New("llm provider unavailable")

// LLMAnswer is the text produced by a generative backend together with
// the fixed confidence constant of the provider that produced it.
type LLMAnswer struct {
	Text       string
	Provider   string
	Model      string
	Confidence float64
}

// LLMProvider is the boundary to a text-generation backend. The answer
// resolver depends only on this interface; providers are chosen once at
// startup and injected. Implementations make a single attempt per call
// with their own timeout; no retry loop sits at this boundary.
type LLMProvider interface {
	// Name identifies the backend ("openai", "ollama", ...)
	Name() string

	// IsAvailable reports whether the backend is currently reachable
	IsAvailable(ctx context.Context) bool

	// AnswerClinicalQuestion generates an answer conditioned on the
	// patient's assembled clinical context and the retrieved chunk texts
	AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*LLMAnswer, error)

	// GenerateSummary produces a clinical summary from structured context
	GenerateSummary(ctx context.Context, pc *entities.PatientContext) (*LLMAnswer, error)
}
