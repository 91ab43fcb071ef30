package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
)

// SummaryFallbackConfidence is reported by summaries synthesized from
// structured fields when no generative backend is reachable.
const SummaryFallbackConfidence = 0.4

// summaryLabsShown caps how many recent labs the fallback summary lists.
const summaryLabsShown = 5

// SummaryService generates and persists clinical summaries. Like the
// answer resolver it degrades to a deterministic template when the LLM
// is unavailable, so summary generation never fails for LLM reasons.
type SummaryService struct {
	contextService *ContextService
	summaryRepo    repositories.SummaryRepository
	llm            providers.LLMProvider
	eventBus       providers.EventBus
}

// NewSummaryService creates a new summary service. llm and eventBus may
// be nil; generation then always uses the fallback template and skips
// event publishing.
func NewSummaryService(
	contextService *ContextService,
	summaryRepo repositories.SummaryRepository,
	llm providers.LLMProvider,
	eventBus providers.EventBus,
) *SummaryService {
	return &SummaryService{
		contextService: contextService,
		summaryRepo:    summaryRepo,
		llm:            llm,
		eventBus:       eventBus,
	}
}

// Generate builds a fresh summary for the patient, persists it, and
// announces the change so cached responses for the patient get dropped.
// Returns a NotFound error for an unknown patient.
func (s *SummaryService) Generate(ctx context.Context, patientID string) (*entities.Summary, error) {
	pc, err := s.contextService.BuildContext(ctx, patientID)
	if err != nil {
		return nil, err
	}

	text, confidence := s.synthesize(ctx, pc)

	summary := &entities.Summary{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		Text:        text,
		Confidence:  &confidence,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		return nil, err
	}

	PublishPatientEvent(ctx, s.eventBus, patientID, entities.PatientEventTypeSummaryGenerated, map[string]interface{}{
		"summary_id": summary.ID,
	})

	return summary, nil
}

// synthesize asks the LLM for a summary and falls back to the template
// on any failure.
func (s *SummaryService) synthesize(ctx context.Context, pc *entities.PatientContext) (string, float64) {
	if s.llm != nil {
		answer, err := s.llm.GenerateSummary(ctx, pc)
		if err == nil {
			return answer.Text, answer.Confidence
		}
		log.Printf("Warning: LLM summary failed for %s, using template: %v", pc.Patient.ID, err)
	}
	return fallbackSummary(pc), SummaryFallbackConfidence
}

// fallbackSummary renders the structured context as a short deterministic
// narrative.
func fallbackSummary(pc *entities.PatientContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s is a %d-year-old %s.", pc.Patient.Name, pc.Patient.Age, strings.ToLower(pc.Patient.Gender))

	if len(pc.Labs) > 0 {
		fmt.Fprintf(&sb, " Recent lab results: %s.", formatReadings(pc.Labs, summaryLabsShown))
	}
	if len(pc.Vitals) > 0 {
		fmt.Fprintf(&sb, " Recent vitals: %s.", formatReadings(pc.Vitals, fallbackSeriesShown))
	}

	sb.WriteString(" This summary was generated without AI assistance; clinical review is recommended.")
	return sb.String()
}
