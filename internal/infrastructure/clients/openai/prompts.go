package openai

import (
	"fmt"
	"strings"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

const systemClinicalPrompt = `You are a clinical AI assistant specialized in analyzing patient data and providing evidence-based medical insights. Your responses should be:
- Accurate and based on clinical evidence
- Clear and professional
- Appropriately cautious about limitations
- Focused on supporting healthcare providers

Always include relevant clinical reasoning and mention when further medical evaluation is recommended.`

const clinicalQAPrompt = `Answer the clinical question based on the provided patient context and available data. Your response should:

1. Directly address the question asked
2. Use the patient's specific clinical data
3. Provide relevant clinical reasoning
4. Acknowledge any limitations in the available data
5. Suggest additional evaluation if needed

Be specific and evidence-based in your analysis.`

const patientSummaryPrompt = `Analyze the provided patient information and create a comprehensive clinical summary. Include:

1. Key demographic information
2. Primary medical conditions and concerns
3. Significant clinical findings (labs, vitals, etc.)
4. Risk factors and complications
5. Clinical priorities for ongoing care

Focus on actionable clinical insights that would help healthcare providers understand the patient's current status and care needs.`

// Prompt context bounds. The assembler already caps what it loads; these
// keep the prompt itself small even if those caps grow.
const (
	promptLabsLimit   = 10
	promptVitalsLimit = 8
)

// buildClinicalContext renders the assembled patient context (and any
// retrieved document chunks) into the context sections the prompts
// reference.
func buildClinicalContext(pc *entities.PatientContext, chunks []string) []string {
	if pc == nil {
		return nil
	}

	parts := []string{
		fmt.Sprintf("Patient: %s, %d years old, %s", pc.Patient.Name, pc.Patient.Age, pc.Patient.Gender),
	}

	if pc.Summary != nil && pc.Summary.Text != "" {
		parts = append(parts, "Clinical Summary: "+pc.Summary.Text)
	}

	if len(pc.Labs) > 0 {
		var sb strings.Builder
		sb.WriteString("Laboratory Results:\n")
		for i, lab := range pc.Labs {
			if i >= promptLabsLimit {
				break
			}
			reference := ""
			if lab.ReferenceRange != nil && *lab.ReferenceRange != "" {
				reference = fmt.Sprintf(" (Normal: %s)", *lab.ReferenceRange)
			}
			sb.WriteString(fmt.Sprintf("- %s: %s %s%s (%s)\n",
				lab.Name, lab.Value, lab.Unit, reference, lab.RecordedAt.Format("2006-01-02")))
		}
		parts = append(parts, sb.String())
	}

	if len(pc.Vitals) > 0 {
		var sb strings.Builder
		sb.WriteString("Vital Signs:\n")
		for i, vital := range pc.Vitals {
			if i >= promptVitalsLimit {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %s %s (%s)\n",
				vital.Name, vital.Value, vital.Unit, vital.RecordedAt.Format("2006-01-02")))
		}
		parts = append(parts, sb.String())
	}

	if len(chunks) > 0 {
		parts = append(parts, "Relevant Clinical Documents:\n"+strings.Join(chunks, "\n"))
	}

	return parts
}

// buildUserPrompt embeds the context sections ahead of the task prompt,
// matching the Context/Query shape the model is tuned on.
func buildUserPrompt(taskPrompt string, contextParts []string) string {
	if len(contextParts) == 0 {
		return taskPrompt
	}
	return fmt.Sprintf("Context:\n%s\n\nQuery: %s", strings.Join(contextParts, "\n\n"), taskPrompt)
}
