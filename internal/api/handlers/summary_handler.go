package handlers

import (
	"context"
	"net/http"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// SummaryGenerator produces and persists a clinical summary
type SummaryGenerator interface {
	Generate(ctx context.Context, patientID string) (*entities.Summary, error)
}

// SummaryHandler handles summary generation requests
type SummaryHandler struct {
	generator SummaryGenerator
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(generator SummaryGenerator) *SummaryHandler {
	return &SummaryHandler{
		generator: generator,
	}
}

// GenerateSummary handles POST /api/patients/{id}/summary
func (h *SummaryHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	summary, err := h.generator.Generate(r.Context(), patientID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithError(w, http.StatusNotFound, "Patient not found")
			default:
				respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusCreated, summary)
}
