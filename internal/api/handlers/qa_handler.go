package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// QuestionAnswerer resolves a free-text question about a patient
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, patientID, question string) (*entities.AnswerResult, error)
}

// QAHandler handles question-answering requests
type QAHandler struct {
	answerer QuestionAnswerer
}

// NewQAHandler creates a new QA handler
func NewQAHandler(answerer QuestionAnswerer) *QAHandler {
	return &QAHandler{
		answerer: answerer,
	}
}

type qaRequest struct {
	Question string `json:"question"`
}

// qaResponse keeps the legacy wire contract: the primary citation is
// flattened to source_document and source_page, null when the answer was
// synthesized without documents.
type qaResponse struct {
	Answer          string  `json:"answer"`
	SourceDocument  *string `json:"source_document"`
	SourcePage      *int    `json:"source_page"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// AskQuestion handles POST /api/patients/{id}/ask
func (h *QAHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var req qaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.answerer.AnswerQuestion(r.Context(), patientID, req.Question)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithError(w, http.StatusNotFound, "Patient not found")
			case apperrors.ErrorTypeValidation:
				respondWithError(w, http.StatusBadRequest, appErr.Message)
			default:
				respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := qaResponse{
		Answer:          result.Answer,
		ConfidenceScore: result.Confidence,
	}
	if len(result.Sources) > 0 {
		primary := result.Sources[0]
		if primary.Document != "" {
			resp.SourceDocument = &primary.Document
		}
		resp.SourcePage = primary.Page
	}

	respondWithJSON(w, http.StatusOK, resp)
}
