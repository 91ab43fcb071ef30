package entities

import "time"

// DefaultCachedAnswerConfidence is reported for seeded QA pairs that
// carry no explicit confidence.
const DefaultCachedAnswerConfidence = 0.8

// CachedAnswer is a pre-authored question/answer pair for a patient.
// Matching is case-insensitive substring containment of Question inside
// the incoming question, not semantic similarity.
type CachedAnswer struct {
	ID               string    `json:"id" db:"id"`
	PatientID        string    `json:"patient_id" db:"patient_id"`
	Question         string    `json:"question" db:"question"`
	Answer           string    `json:"answer" db:"answer"`
	SourceDocumentID *string   `json:"source_document_id,omitempty" db:"source_document_id"`
	SourcePage       *int      `json:"source_page,omitempty" db:"source_page"`
	Confidence       *float64  `json:"confidence,omitempty" db:"confidence_score"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// EffectiveConfidence returns the stored confidence, or the default for
// rows seeded without one.
func (c *CachedAnswer) EffectiveConfidence() float64 {
	if c.Confidence != nil {
		return *c.Confidence
	}
	return DefaultCachedAnswerConfidence
}
