package services

import (
	"context"
	"log"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
)

// PublishPatientEvent fans a patient data event out to the global updates
// channel and the patient's own channel. Delivery is best-effort: a
// publish failure is logged and never fails the write that triggered it.
// A nil bus (Redis not configured) is a no-op.
func PublishPatientEvent(ctx context.Context, bus providers.EventBus, patientID string, eventType entities.PatientEventType, changedFields map[string]interface{}) {
	if bus == nil {
		return
	}

	event := entities.NewPatientEvent(patientID, eventType, changedFields)
	channels := []string{
		providers.EventChannelPatientUpdates,
		providers.GetPatientChannel(patientID),
	}
	for _, channel := range channels {
		if err := bus.Publish(ctx, channel, event); err != nil {
			log.Printf("Warning: failed to publish %s event for %s on %s: %v", eventType, patientID, channel, err)
		}
	}
}
