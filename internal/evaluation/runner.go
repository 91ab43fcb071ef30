package evaluation

import (
	"context"
	"time"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// AnswerProvider resolves a question the same way the API does.
type AnswerProvider interface {
	AnswerQuestion(ctx context.Context, patientID, question string) (*entities.AnswerResult, error)
}

// RetrievalProvider exposes the ranked chunks behind an answer so
// retrieval quality can be measured independently of generation.
type RetrievalProvider interface {
	RetrieveForPatient(ctx context.Context, patientID, query string) ([]entities.RankedChunk, error)
}

// Runner runs evaluation across a set of golden questions.
type Runner struct {
	answers    AnswerProvider
	retrieval  RetrievalProvider
	guardrails *Guardrails
	k          int
}

// NewRunner builds a runner. Retrieval and guardrails are optional;
// k defaults to 10 when unset.
func NewRunner(answers AnswerProvider, retrieval RetrievalProvider, guardrails *Guardrails, k int) *Runner {
	if k <= 0 {
		k = 10
	}
	return &Runner{
		answers:    answers,
		retrieval:  retrieval,
		guardrails: guardrails,
		k:          k,
	}
}

// Run answers every golden question and aggregates quality metrics.
// A question whose resolution errors is counted and skipped; retrieval
// metrics are only aggregated over questions with chunk labels.
func (r *Runner) Run(ctx context.Context, questions []GoldenQuestion) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQuestions: len(questions),
		MethodCounts:   make(map[string]int),
		ByDifficulty:   make(map[Difficulty]*DifficultyStats),
	}

	for _, gq := range questions {
		start := time.Now()
		answer, err := r.answers.AnswerQuestion(ctx, gq.PatientID, gq.Question)
		latency := time.Since(start)

		if err != nil && answer == nil {
			summary.AnswerErrors++
			continue
		}

		result := QuestionResult{
			QuestionID: gq.ID,
			PatientID:  gq.PatientID,
			Question:   gq.Question,
			Difficulty: gq.Difficulty,
			Method:     string(answer.Method),
			Answer:     answer.Answer,
			Confidence: answer.Confidence,
			Latency:    latency,
		}

		labeled := false
		if r.retrieval != nil && len(gq.RelevantChunkIDs) > 0 {
			ranked, rErr := r.retrieval.RetrieveForPatient(ctx, gq.PatientID, gq.Question)
			if rErr == nil {
				retrievedIDs := make([]string, len(ranked))
				for i, rc := range ranked {
					retrievedIDs[i] = rc.Chunk.ID
				}
				result.ChunksRetrieved = len(retrievedIDs)
				result.RecallAtK = RecallAtK(gq.RelevantChunkIDs, retrievedIDs, r.k)
				result.MRRAtK = MRRAtK(gq.RelevantChunkIDs, retrievedIDs, r.k)
				labeled = true
			}
		}

		if r.guardrails != nil {
			result.Violations = r.guardrails.Check(gq, answer)
		}

		r.updateSummary(summary, result, labeled)
		summary.Results = append(summary.Results, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res QuestionResult, labeled bool) {
	s.AvgConfidence += res.Confidence
	s.AvgLatency += res.Latency
	s.MethodCounts[res.Method]++
	s.ViolationCount += len(res.Violations)
	if labeled {
		s.LabeledQuestions++
		s.AvgRecallAtK += res.RecallAtK
		s.AvgMRRAtK += res.MRRAtK
	}

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultyStats{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	ds.AvgConfidence += res.Confidence
	if labeled {
		ds.Labeled++
		ds.AvgRecallAtK += res.RecallAtK
		ds.AvgMRRAtK += res.MRRAtK
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	answered := len(s.Results)
	if answered > 0 {
		s.AvgConfidence /= float64(answered)
		s.AvgLatency /= time.Duration(answered)
	}
	if s.LabeledQuestions > 0 {
		n := float64(s.LabeledQuestions)
		s.AvgRecallAtK /= n
		s.AvgMRRAtK /= n
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			ds.AvgConfidence /= float64(ds.Count)
		}
		if ds.Labeled > 0 {
			n := float64(ds.Labeled)
			ds.AvgRecallAtK /= n
			ds.AvgMRRAtK /= n
		}
	}
}
