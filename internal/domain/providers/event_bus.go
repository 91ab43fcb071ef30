package providers

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// patient data events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PatientEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PatientEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for patient data events
const (
	// EventChannelPatientUpdates is the channel for all patient data updates
	EventChannelPatientUpdates = "patient:updates"

	// EventChannelPatientPrefix is the prefix for patient-specific channels
	EventChannelPatientPrefix = "patient:"
)

// GetPatientChannel returns the channel name for a specific patient
func GetPatientChannel(patientID string) string {
	return EventChannelPatientPrefix + patientID
}
