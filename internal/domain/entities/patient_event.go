package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// PatientEventType represents the type of patient data event
type PatientEventType string

const (
	PatientEventTypeSummaryGenerated PatientEventType = "summary_generated"
	PatientEventTypeDocumentIngested PatientEventType = "document_ingested"
	PatientEventTypeDataSeeded       PatientEventType = "data_seeded"
)

// PatientEvent notifies subscribers that a patient's stored data changed,
// so response caches can drop stale payloads.
type PatientEvent struct {
	ID            string                 `json:"id"`
	PatientID     string                 `json:"patient_id"`
	EventType     PatientEventType       `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewPatientEvent creates a new patient event
func NewPatientEvent(patientID string, eventType PatientEventType, changedFields map[string]interface{}) *PatientEvent {
	return &PatientEvent{
		ID:            generateEventID(),
		PatientID:     patientID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random hex string of the given length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
