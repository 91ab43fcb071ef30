// Package llm selects and composes the answer-generation backend from
// configuration. The rest of the application depends only on
// providers.LLMProvider.
package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/ollama"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/openai"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
)

// Modes accepted by AI_PROVIDER.
const (
	ModeAuto   = "auto"
	ModeOpenAI = "openai"
	ModeOllama = "ollama"
	ModeMock   = "mock"
	ModeOff    = "off"
)

// NewLLMProvider builds the configured provider. A nil provider (mode
// "off") means answer resolution skips generation and synthesizes
// fallback answers directly.
func NewLLMProvider(cfg *config.Config) (providers.LLMProvider, error) {
	switch cfg.AI.Provider {
	case ModeOff:
		return nil, nil
	case ModeMock:
		return NewMockProvider(), nil
	case ModeOpenAI:
		return openai.NewClient(&cfg.OpenAI, cfg.AI.TimeoutSeconds)
	case ModeOllama:
		return ollama.NewClient(&cfg.Ollama, cfg.AI.TimeoutSeconds), nil
	case ModeAuto, "":
		return newAutoProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// newAutoProvider prefers OpenAI when a key is configured and keeps
// Ollama as the per-call fallback unless AI_FALLBACK_ENABLED is off.
func newAutoProvider(cfg *config.Config) providers.LLMProvider {
	local := ollama.NewClient(&cfg.Ollama, cfg.AI.TimeoutSeconds)

	if cfg.OpenAI.APIKey == "" {
		return local
	}

	hosted, err := openai.NewClient(&cfg.OpenAI, cfg.AI.TimeoutSeconds)
	if err != nil {
		log.Printf("openai client unavailable, using ollama only: %v", err)
		return local
	}

	if !cfg.AI.FallbackEnabled {
		return hosted
	}

	return &FailoverProvider{primary: hosted, fallback: local}
}

// FailoverProvider tries the primary backend and falls back on any error.
type FailoverProvider struct {
	primary  providers.LLMProvider
	fallback providers.LLMProvider
}

var _ providers.LLMProvider = (*FailoverProvider)(nil)

func (p *FailoverProvider) Name() string {
	return "auto"
}

// IsAvailable reports whether any composed backend answers.
func (p *FailoverProvider) IsAvailable(ctx context.Context) bool {
	if p.primary != nil && p.primary.IsAvailable(ctx) {
		return true
	}
	return p.fallback != nil && p.fallback.IsAvailable(ctx)
}

func (p *FailoverProvider) AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*providers.LLMAnswer, error) {
	answer, err := p.primary.AnswerClinicalQuestion(ctx, question, pc, chunks)
	if err != nil && p.fallback != nil {
		log.Printf("%s answer failed, trying %s: %v", p.primary.Name(), p.fallback.Name(), err)
		return p.fallback.AnswerClinicalQuestion(ctx, question, pc, chunks)
	}
	return answer, err
}

func (p *FailoverProvider) GenerateSummary(ctx context.Context, pc *entities.PatientContext) (*providers.LLMAnswer, error) {
	answer, err := p.primary.GenerateSummary(ctx, pc)
	if err != nil && p.fallback != nil {
		log.Printf("%s summary failed, trying %s: %v", p.primary.Name(), p.fallback.Name(), err)
		return p.fallback.GenerateSummary(ctx, pc)
	}
	return answer, err
}
