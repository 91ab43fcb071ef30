package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
)

// MockProvider produces deterministic answers for local development and
// offline demos. It never fails and never leaves the process.
type MockProvider struct{}

// NewMockProvider creates a mock answer-generation provider.
func NewMockProvider() providers.LLMProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

// IsAvailable always reports true.
func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// AnswerClinicalQuestion echoes the question with the most recent lab
// values so demo responses stay grounded in stored data.
func (m *MockProvider) AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*providers.LLMAnswer, error) {
	var sb strings.Builder
	name := "the patient"
	if pc != nil {
		name = pc.Patient.Name
	}
	fmt.Fprintf(&sb, "Regarding %q for %s", question, name)

	if pc != nil && len(pc.Labs) > 0 {
		values := make([]string, 0, len(pc.Labs))
		for _, lab := range pc.Labs {
			values = append(values, fmt.Sprintf("%s %s %s", lab.Name, lab.Value, lab.Unit))
		}
		fmt.Fprintf(&sb, ": recent labs show %s", strings.Join(values, ", "))
	}
	sb.WriteString(".")

	return &providers.LLMAnswer{
		Text:       sb.String(),
		Provider:   m.Name(),
		Model:      "mock",
		Confidence: 0.5,
	}, nil
}

// GenerateSummary returns a fixed-shape summary from the context.
func (m *MockProvider) GenerateSummary(ctx context.Context, pc *entities.PatientContext) (*providers.LLMAnswer, error) {
	text := "No patient context available."
	if pc != nil {
		text = fmt.Sprintf("%s is a %d-year-old %s with %d recent lab results and %d recent vital signs on record.",
			pc.Patient.Name, pc.Patient.Age, strings.ToLower(pc.Patient.Gender), len(pc.Labs), len(pc.Vitals))
	}

	return &providers.LLMAnswer{
		Text:       text,
		Provider:   m.Name(),
		Model:      "mock",
		Confidence: 0.5,
	}, nil
}
