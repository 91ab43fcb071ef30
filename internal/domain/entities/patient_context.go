package entities

import "strings"

// PatientContext is the assembled snapshot of a patient's known clinical
// state used for prompt construction and fallback synthesis. Vitals and
// labs are bounded, recency-descending slices; Summary is nil when the
// patient has none yet.
type PatientContext struct {
	Patient Patient         `json:"patient"`
	Summary *Summary        `json:"summary,omitempty"`
	Vitals  []ClinicalDatum `json:"vitals"`
	Labs    []ClinicalDatum `json:"labs"`
}

// FindLab returns the most recent lab whose name contains the given
// term, or nil. Matching is case-insensitive containment so "creatinine"
// also finds "serum_creatinine". Lab slices are already
// recency-descending so the first hit wins.
func (pc *PatientContext) FindLab(term string) *ClinicalDatum {
	lowered := strings.ToLower(term)
	for i := range pc.Labs {
		if strings.Contains(strings.ToLower(pc.Labs[i].Name), lowered) {
			return &pc.Labs[i]
		}
	}
	return nil
}
