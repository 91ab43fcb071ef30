package services

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// Bounds applied to the clinical series loaded into a patient context.
// A context is prompt material, not a full chart export.
const (
	DefaultVitalsLimit = 10
	DefaultLabsLimit   = 20
)

// ContextService assembles the snapshot of a patient's clinical state that
// the answer resolver and summary service condition on.
type ContextService struct {
	patientRepo  repositories.PatientRepository
	clinicalRepo repositories.ClinicalDataRepository
	summaryRepo  repositories.SummaryRepository
	vitalsLimit  int
	labsLimit    int
}

// NewContextService creates a new context service. Limits of zero or less
// fall back to the defaults.
func NewContextService(
	patientRepo repositories.PatientRepository,
	clinicalRepo repositories.ClinicalDataRepository,
	summaryRepo repositories.SummaryRepository,
	vitalsLimit, labsLimit int,
) *ContextService {
	if vitalsLimit <= 0 {
		vitalsLimit = DefaultVitalsLimit
	}
	if labsLimit <= 0 {
		labsLimit = DefaultLabsLimit
	}
	return &ContextService{
		patientRepo:  patientRepo,
		clinicalRepo: clinicalRepo,
		summaryRepo:  summaryRepo,
		vitalsLimit:  vitalsLimit,
		labsLimit:    labsLimit,
	}
}

// BuildContext loads the patient record, latest summary, and the recent
// vitals and labs series. An unknown patient is the only hard failure and
// surfaces as a NotFound error; a missing summary is normal for patients
// that have not had one generated yet.
func (s *ContextService) BuildContext(ctx context.Context, patientID string) (*entities.PatientContext, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	pc := &entities.PatientContext{Patient: *patient}

	summary, err := s.summaryRepo.GetLatest(ctx, patientID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	pc.Summary = summary

	vitals, err := s.clinicalRepo.ListRecent(ctx, patientID, entities.CategoryVital, s.vitalsLimit)
	if err != nil {
		return nil, err
	}
	pc.Vitals = vitals

	labs, err := s.clinicalRepo.ListRecent(ctx, patientID, entities.CategoryLab, s.labsLimit)
	if err != nil {
		return nil, err
	}
	pc.Labs = labs

	return pc, nil
}
