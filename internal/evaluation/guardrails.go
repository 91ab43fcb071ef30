package evaluation

import (
	"fmt"
	"strings"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// GuardrailConfig bounds what counts as an acceptable answer.
type GuardrailConfig struct {
	MinConfidence  float64
	MaxConfidence  float64
	AllowedMethods []string
}

// Guardrails checks resolved answers against hard acceptability rules.
// Violations are advisory for medium/hard questions but fail the whole
// run from cmd/evaluate.
type Guardrails struct {
	config  GuardrailConfig
	allowed map[string]bool
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxConfidence <= 0 {
		config.MaxConfidence = 1.0
	}
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = []string{
			string(entities.AnswerMethodDatabaseLookup),
			string(entities.AnswerMethodRAGLLM),
			string(entities.AnswerMethodFallback),
		}
	}

	allowed := make(map[string]bool, len(config.AllowedMethods))
	for _, m := range config.AllowedMethods {
		allowed[m] = true
	}

	return &Guardrails{config: config, allowed: allowed}
}

// Check returns every guardrail violated by one resolved answer.
func (g *Guardrails) Check(q GoldenQuestion, result *entities.AnswerResult) []string {
	var violations []string

	if result == nil {
		return []string{"no answer returned"}
	}
	if !result.Success {
		violations = append(violations, fmt.Sprintf("resolution failed: %s", result.Error))
	}
	if strings.TrimSpace(result.Answer) == "" {
		violations = append(violations, "empty answer")
	}
	if result.Confidence < g.config.MinConfidence || result.Confidence > g.config.MaxConfidence {
		violations = append(violations, fmt.Sprintf(
			"confidence %.2f outside [%.2f, %.2f]",
			result.Confidence, g.config.MinConfidence, g.config.MaxConfidence))
	}
	if !g.allowed[string(result.Method)] {
		violations = append(violations, fmt.Sprintf("method %q not allowed", result.Method))
	}
	if q.ExpectedMethod != "" && string(result.Method) != q.ExpectedMethod {
		violations = append(violations, fmt.Sprintf(
			"method %q, expected %q", result.Method, q.ExpectedMethod))
	}

	loweredAnswer := strings.ToLower(result.Answer)
	for _, sub := range q.ExpectedSubstrings {
		if !strings.Contains(loweredAnswer, strings.ToLower(sub)) {
			violations = append(violations, fmt.Sprintf("answer missing %q", sub))
		}
	}

	return violations
}
