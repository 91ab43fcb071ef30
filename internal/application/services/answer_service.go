package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/observability"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/utils"
)

// FallbackConfidence is reported by answers synthesized from structured
// fields without a model.
const FallbackConfidence = 0.3

// fallbackSeriesShown caps how many recent readings the vitals and labs
// fallback branches list.
const fallbackSeriesShown = 3

// AnswerService resolves free-text clinical questions through a fixed
// chain: pre-computed QA lookup, one LLM attempt over retrieved document
// chunks, then deterministic fallback synthesis. Only an unknown patient
// fails a call; every LLM-side failure degrades to the fallback branch
// with Success still true.
type AnswerService struct {
	contextService   *ContextService
	retrievalService *RetrievalService
	cachedAnswerRepo repositories.CachedAnswerRepository
	documentRepo     repositories.DocumentRepository
	llm              providers.LLMProvider
	metrics          *observability.Metrics
}

// NewAnswerService creates a new answer service. llm may be nil when
// generative answering is disabled; every question then resolves through
// the cache or the fallback synthesizer. metrics may be nil in tests.
func NewAnswerService(
	contextService *ContextService,
	retrievalService *RetrievalService,
	cachedAnswerRepo repositories.CachedAnswerRepository,
	documentRepo repositories.DocumentRepository,
	llm providers.LLMProvider,
	metrics *observability.Metrics,
) *AnswerService {
	return &AnswerService{
		contextService:   contextService,
		retrievalService: retrievalService,
		cachedAnswerRepo: cachedAnswerRepo,
		documentRepo:     documentRepo,
		llm:              llm,
		metrics:          metrics,
	}
}

// AnswerQuestion answers a question about a patient. The returned result
// always carries a renderable envelope; the error is non-nil only for an
// unknown patient, an invalid question, or a storage fault on the patient
// lookup itself.
func (s *AnswerService) AnswerQuestion(ctx context.Context, patientID, question string) (*entities.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.NewValidationError("question is required")
	}

	pc, err := s.contextService.BuildContext(ctx, patientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &entities.AnswerResult{
				Success: false,
				Error:   "patient not found",
				Sources: []entities.AnswerSource{},
			}, err
		}
		return nil, err
	}

	// Pre-computed QA pairs win outright; neither retrieval nor the LLM
	// runs on a hit. A lookup fault is not worth failing the request over.
	cached, err := s.cachedAnswerRepo.FindMatch(ctx, patientID, question)
	if err == nil {
		result := s.fromCachedAnswer(ctx, cached)
		s.recordMetric(ctx, result)
		return result, nil
	}
	if !apperrors.IsNotFound(err) {
		log.Printf("Warning: cached answer lookup failed for %s: %v", patientID, err)
	}

	ranked, err := s.retrievalService.RetrieveForPatient(ctx, patientID, question)
	if err != nil {
		log.Printf("Warning: chunk retrieval failed for %s: %v", patientID, err)
		ranked = nil
	}

	chunkTexts := make([]string, len(ranked))
	sources := make([]entities.AnswerSource, len(ranked))
	for i, rc := range ranked {
		chunkTexts[i] = formatChunkContext(rc.Chunk)
		sources[i] = entities.AnswerSource{
			Document:  rc.Chunk.Filename,
			Page:      rc.Chunk.PageNumber,
			Relevance: rc.Score,
			Type:      entities.SourceTypeDocumentChunk,
		}
	}

	if s.llm != nil {
		answer, err := s.llm.AnswerClinicalQuestion(ctx, question, pc, chunkTexts)
		if err == nil {
			result := &entities.AnswerResult{
				Success:    true,
				Answer:     answer.Text,
				Confidence: answer.Confidence,
				Sources:    sources,
				Method:     entities.AnswerMethodRAGLLM,
				ChunksUsed: len(ranked),
			}
			s.recordMetric(ctx, result)
			return result, nil
		}
		log.Printf("Warning: LLM answer failed for %s, falling back: %v", patientID, err)
	}

	// Demoted answers keep the retrieved sources, retagged so callers can
	// tell a cited chunk from one an LLM actually read.
	for i := range sources {
		sources[i].Type = entities.SourceTypeFallback
	}

	log.Printf("Answer for %s resolved by fallback (topic: %s)", patientID, utils.DetectQuestionTopic(question))

	result := &entities.AnswerResult{
		Success:    true,
		Answer:     synthesizeFallback(question, pc, len(ranked)),
		Confidence: FallbackConfidence,
		Sources:    sources,
		Method:     entities.AnswerMethodFallback,
		ChunksUsed: len(ranked),
	}
	s.recordMetric(ctx, result)
	return result, nil
}

// fromCachedAnswer builds the result envelope for a QA-pair hit. The
// source cites the pair's document when one is linked and resolvable,
// "Unknown" otherwise.
func (s *AnswerService) fromCachedAnswer(ctx context.Context, cached *entities.CachedAnswer) *entities.AnswerResult {
	source := entities.AnswerSource{
		Document: "Unknown",
		Page:     cached.SourcePage,
		Type:     entities.SourceTypePreComputed,
	}
	if cached.SourceDocumentID != nil {
		if doc, err := s.documentRepo.GetByID(ctx, *cached.SourceDocumentID); err == nil {
			source.Document = doc.Filename
		}
	}

	return &entities.AnswerResult{
		Success:    true,
		Answer:     cached.Answer,
		Confidence: cached.EffectiveConfidence(),
		Sources:    []entities.AnswerSource{source},
		Method:     entities.AnswerMethodDatabaseLookup,
	}
}

func (s *AnswerService) recordMetric(ctx context.Context, result *entities.AnswerResult) {
	if s.metrics == nil {
		return
	}
	observability.RecordAnswerMetric(ctx, s.metrics, string(result.Method), result.Success)
}

// formatChunkContext renders one retrieved chunk as a prompt context line
// with its document attribution.
func formatChunkContext(chunk entities.DocumentChunk) string {
	if chunk.PageNumber != nil {
		return fmt.Sprintf("From %s (page %d): %s", chunk.Filename, *chunk.PageNumber, chunk.Text)
	}
	return fmt.Sprintf("From %s: %s", chunk.Filename, chunk.Text)
}

// synthesizeFallback produces a deterministic answer from structured
// fields alone. Branches are tried in sequence and each requires both a
// keyword match and the data to back it, so a kidney question without
// kidney labs still falls through to later branches.
func synthesizeFallback(question string, pc *entities.PatientContext, chunkCount int) string {
	name := pc.Patient.Name
	if name == "" {
		name = "the patient"
	}

	if utils.MentionsTopic(question, utils.TopicKidney) {
		creatinine := pc.FindLab("creatinine")
		egfr := pc.FindLab("egfr")
		if creatinine != nil && egfr != nil {
			return fmt.Sprintf("Based on lab results for %s, creatinine is %s %s and eGFR is %s %s. These values indicate significant kidney function impairment.",
				name, creatinine.Value, creatinine.Unit, egfr.Value, egfr.Unit)
		}
	}

	if utils.MentionsTopic(question, utils.TopicSummary) {
		if pc.Summary != nil && pc.Summary.Text != "" {
			return fmt.Sprintf("Clinical summary for %s: %s", name, pc.Summary.Text)
		}
	}

	if utils.MentionsTopic(question, utils.TopicVitals) && len(pc.Vitals) > 0 {
		return fmt.Sprintf("Recent vitals for %s: %s.", name, formatReadings(pc.Vitals, fallbackSeriesShown))
	}

	if utils.MentionsTopic(question, utils.TopicLabs) && len(pc.Labs) > 0 {
		return fmt.Sprintf("Recent lab results for %s: %s.", name, formatReadings(pc.Labs, fallbackSeriesShown))
	}

	if chunkCount > 0 {
		return fmt.Sprintf("Based on clinical documents for %s, relevant information was found but detailed analysis requires full AI system. Please consult documents directly or contact healthcare provider.", name)
	}

	return fmt.Sprintf("Insufficient information available to answer that question about %s.", name)
}

// formatReadings renders the newest readings of a clinical series as a
// semicolon-separated list, at most max entries.
func formatReadings(series []entities.ClinicalDatum, max int) string {
	shown := series
	if len(shown) > max {
		shown = shown[:max]
	}
	parts := make([]string, len(shown))
	for i, d := range shown {
		parts[i] = strings.TrimSpace(fmt.Sprintf("%s %s %s", d.Name, d.Value, d.Unit))
	}
	return strings.Join(parts, "; ")
}
