package repositories

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// SummaryRepository defines the interface for AI summary storage
type SummaryRepository interface {
	// Create stores a newly generated summary
	Create(ctx context.Context, summary *entities.Summary) error

	// GetLatest retrieves the most recent summary for a patient, or a
	// not-found error when the patient has none
	GetLatest(ctx context.Context, patientID string) (*entities.Summary, error)
}
