package repositories

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// ClinicalDataRepository defines the interface for clinical time-series
// operations. The series is append-only; there is no update or delete.
type ClinicalDataRepository interface {
	// Create appends a new clinical datum
	Create(ctx context.Context, datum *entities.ClinicalDatum) error

	// ListRecent retrieves the most recent data points for a patient and
	// category, recency descending, bounded by limit
	ListRecent(ctx context.Context, patientID string, category entities.ClinicalCategory, limit int) ([]entities.ClinicalDatum, error)
}
