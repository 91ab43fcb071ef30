package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

func cleanAnswer() *entities.AnswerResult {
	return &entities.AnswerResult{
		Success:    true,
		Answer:     "eGFR of 18 indicates Stage 4 chronic kidney disease.",
		Confidence: 0.95,
		Method:     entities.AnswerMethodDatabaseLookup,
		Sources:    []entities.AnswerSource{},
	}
}

func TestGuardrails_CleanAnswerPasses(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinConfidence: 0.1})

	violations := g.Check(GoldenQuestion{ID: "q1"}, cleanAnswer())

	assert.Empty(t, violations)
}

func TestGuardrails_EmptyAnswerFlagged(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	answer := cleanAnswer()
	answer.Answer = "   "
	violations := g.Check(GoldenQuestion{ID: "q1"}, answer)

	assert.Contains(t, violations, "empty answer")
}

func TestGuardrails_ConfidenceBounds(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinConfidence: 0.2})

	low := cleanAnswer()
	low.Confidence = 0.1
	assert.NotEmpty(t, g.Check(GoldenQuestion{}, low))

	high := cleanAnswer()
	high.Confidence = 1.4
	assert.NotEmpty(t, g.Check(GoldenQuestion{}, high))

	ok := cleanAnswer()
	ok.Confidence = 0.3
	assert.Empty(t, g.Check(GoldenQuestion{}, ok))
}

func TestGuardrails_MethodMismatch(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	answer := cleanAnswer()
	answer.Method = entities.AnswerMethodFallback
	violations := g.Check(GoldenQuestion{ExpectedMethod: "rag_llm"}, answer)

	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], `expected "rag_llm"`)
}

func TestGuardrails_UnknownMethodFlagged(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	answer := cleanAnswer()
	answer.Method = entities.AnswerMethod("oracle")
	violations := g.Check(GoldenQuestion{}, answer)

	assert.NotEmpty(t, violations)
}

func TestGuardrails_ExpectedSubstringsCaseInsensitive(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	violations := g.Check(GoldenQuestion{
		ExpectedSubstrings: []string{"EGFR", "stage 4"},
	}, cleanAnswer())
	assert.Empty(t, violations)

	violations = g.Check(GoldenQuestion{
		ExpectedSubstrings: []string{"dialysis schedule"},
	}, cleanAnswer())
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "dialysis schedule")
}

func TestGuardrails_FailedResolutionFlagged(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	violations := g.Check(GoldenQuestion{}, &entities.AnswerResult{
		Success: false,
		Error:   "patient not found",
	})

	assert.NotEmpty(t, violations)

	violations = g.Check(GoldenQuestion{}, nil)
	assert.Equal(t, []string{"no answer returned"}, violations)
}
