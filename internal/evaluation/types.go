package evaluation

import "time"

// Difficulty buckets golden questions by how hard they are to answer.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // direct lab/vital lookups
	DifficultyMedium Difficulty = "medium" // needs document retrieval
	DifficultyHard   Difficulty = "hard"   // needs synthesis across sources
)

// ValidDifficulties returns all valid difficulty values.
func ValidDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// IsValid checks if the difficulty value is one of the defined constants.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GoldenQuestion represents a labeled test question with expected outcomes.
// RelevantChunkIDs label which stored document chunks a retriever should
// surface; questions without labels skip the retrieval metrics.
type GoldenQuestion struct {
	ID                 string     `json:"id"`
	PatientID          string     `json:"patient_id"`
	Question           string     `json:"question"`
	ExpectedMethod     string     `json:"expected_method,omitempty"`
	ExpectedSubstrings []string   `json:"expected_substrings,omitempty"`
	RelevantChunkIDs   []string   `json:"relevant_chunk_ids,omitempty"`
	Difficulty         Difficulty `json:"difficulty"`
}

// QuestionResult holds the evaluation outcome for a single question.
type QuestionResult struct {
	QuestionID      string        `json:"question_id"`
	PatientID       string        `json:"patient_id"`
	Question        string        `json:"question"`
	Difficulty      Difficulty    `json:"difficulty"`
	Method          string        `json:"method"`
	Answer          string        `json:"answer"`
	Confidence      float64       `json:"confidence"`
	RecallAtK       float64       `json:"recall_at_k"`
	MRRAtK          float64       `json:"mrr_at_k"`
	ChunksRetrieved int           `json:"chunks_retrieved"`
	Violations      []string      `json:"violations,omitempty"`
	Latency         time.Duration `json:"latency_ns"`
}

// EvalSummary holds aggregate metrics across all golden questions.
// Retrieval averages are computed over labeled questions only.
type EvalSummary struct {
	TotalQuestions   int                             `json:"total_questions"`
	AnswerErrors     int                             `json:"answer_errors"`
	LabeledQuestions int                             `json:"labeled_questions"`
	AvgRecallAtK     float64                         `json:"avg_recall_at_k"`
	AvgMRRAtK        float64                         `json:"avg_mrr_at_k"`
	AvgConfidence    float64                         `json:"avg_confidence"`
	AvgLatency       time.Duration                   `json:"avg_latency_ns"`
	MethodCounts     map[string]int                  `json:"method_counts"`
	ViolationCount   int                             `json:"violation_count"`
	ByDifficulty     map[Difficulty]*DifficultyStats `json:"by_difficulty"`
	Results          []QuestionResult                `json:"results"`
}

// DifficultyStats holds metrics grouped by question difficulty.
type DifficultyStats struct {
	Count         int     `json:"count"`
	Labeled       int     `json:"labeled"`
	AvgRecallAtK  float64 `json:"avg_recall_at_k"`
	AvgMRRAtK     float64 `json:"avg_mrr_at_k"`
	AvgConfidence float64 `json:"avg_confidence"`
}
