package repositories

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	// Create creates a new patient
	Create(ctx context.Context, patient *entities.Patient) error

	// GetByID retrieves a patient by ID
	GetByID(ctx context.Context, id string) (*entities.Patient, error)

	// List retrieves all patients ordered by name
	List(ctx context.Context) ([]*entities.Patient, error)

	// Delete removes a patient and its dependent rows
	Delete(ctx context.Context, id string) error
}
