package entities

import "time"

// ClinicalCategory distinguishes the two clinical data series
type ClinicalCategory string

const (
	CategoryVital ClinicalCategory = "vital"
	CategoryLab   ClinicalCategory = "lab"
)

// ClinicalDatum is one measurement in a patient's append-only clinical
// time series. Value stays a string: source systems report readings like
// "142" and "4.2" alongside composite values, and the pipeline never does
// arithmetic on them.
type ClinicalDatum struct {
	ID             string           `json:"id" db:"id"`
	PatientID      string           `json:"patient_id" db:"patient_id"`
	Category       ClinicalCategory `json:"category" db:"category"`
	Name           string           `json:"name" db:"name"` // e.g. "creatinine", "heart_rate"
	Value          string           `json:"value" db:"value"`
	Unit           string           `json:"unit" db:"unit"`
	ReferenceRange *string          `json:"reference_range,omitempty" db:"reference_range"`
	RecordedAt     time.Time        `json:"recorded_at" db:"recorded_at"`
}
