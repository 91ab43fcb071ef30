package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientRepo  repositories.PatientRepository
	clinicalRepo repositories.ClinicalDataRepository
	summaryRepo  repositories.SummaryRepository
	documentRepo repositories.DocumentRepository
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(
	patientRepo repositories.PatientRepository,
	clinicalRepo repositories.ClinicalDataRepository,
	summaryRepo repositories.SummaryRepository,
	documentRepo repositories.DocumentRepository,
) *PatientHandler {
	return &PatientHandler{
		patientRepo:  patientRepo,
		clinicalRepo: clinicalRepo,
		summaryRepo:  summaryRepo,
		documentRepo: documentRepo,
	}
}

// patientSummary is the list payload: demographics only
type patientSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// clinicalReading is one vitals or lab row in the detail payload
type clinicalReading struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange *string `json:"reference_range"`
	DateRecorded   string  `json:"date_recorded"`
}

// documentSummary is one document row in the detail payload
type documentSummary struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	DocumentType string `json:"document_type"`
}

// patientDetailResponse is the full patient payload served to the canvas
type patientDetailResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Age        int               `json:"age"`
	Gender     string            `json:"gender"`
	AISummary  *string           `json:"ai_summary"`
	VitalsData []clinicalReading `json:"vitals_data"`
	LabResults []clinicalReading `json:"lab_results"`
	Documents  []documentSummary `json:"documents"`
}

// ListPatients handles GET /api/patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list patients")
		return
	}

	payload := make([]patientSummary, 0, len(patients))
	for _, p := range patients {
		payload = append(payload, patientSummary{
			ID:     p.ID,
			Name:   p.Name,
			Age:    p.Age,
			Gender: p.Gender,
		})
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// GetPatient handles GET /api/patients/{id}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	ctx := r.Context()

	patient, err := h.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "Patient not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Latest summary; absence is not an error
	var aiSummary *string
	summary, err := h.summaryRepo.GetLatest(ctx, patientID)
	if err != nil && !apperrors.IsNotFound(err) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summary != nil {
		aiSummary = &summary.Text
	}

	// Full series, recency descending (limit 0 = unbounded)
	vitals, err := h.clinicalRepo.ListRecent(ctx, patientID, entities.CategoryVital, 0)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	labs, err := h.clinicalRepo.ListRecent(ctx, patientID, entities.CategoryLab, 0)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	documents, err := h.documentRepo.ListByPatient(ctx, patientID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	docs := make([]documentSummary, 0, len(documents))
	for _, d := range documents {
		docs = append(docs, documentSummary{
			ID:           d.ID,
			Filename:     d.Filename,
			DocumentType: d.DocumentType,
		})
	}

	respondWithJSON(w, http.StatusOK, patientDetailResponse{
		ID:         patient.ID,
		Name:       patient.Name,
		Age:        patient.Age,
		Gender:     patient.Gender,
		AISummary:  aiSummary,
		VitalsData: toReadings(vitals),
		LabResults: toReadings(labs),
		Documents:  docs,
	})
}

func toReadings(data []entities.ClinicalDatum) []clinicalReading {
	readings := make([]clinicalReading, 0, len(data))
	for _, d := range data {
		readings = append(readings, clinicalReading{
			Name:           d.Name,
			Value:          d.Value,
			Unit:           d.Unit,
			ReferenceRange: d.ReferenceRange,
			DateRecorded:   d.RecordedAt.Format("2006-01-02"),
		})
	}
	return readings
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
