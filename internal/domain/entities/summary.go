package entities

import "time"

// Summary is an AI-generated clinical summary for a patient. The latest
// summary by GeneratedAt is the one served; earlier rows are kept for
// audit.
type Summary struct {
	ID          string    `json:"id" db:"id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	Text        string    `json:"text" db:"summary_text"`
	Confidence  *float64  `json:"confidence,omitempty" db:"confidence_score"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}
