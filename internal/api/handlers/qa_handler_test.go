package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/handlers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) AnswerQuestion(ctx context.Context, patientID, question string) (*entities.AnswerResult, error) {
	args := m.Called(ctx, patientID, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AnswerResult), args.Error(1)
}

type qaResponseBody struct {
	Answer          string  `json:"answer"`
	SourceDocument  *string `json:"source_document"`
	SourcePage      *int    `json:"source_page"`
	ConfidenceScore float64 `json:"confidence_score"`
}

func askRequest(patientID, body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/patients/"+patientID+"/ask", strings.NewReader(body))
	req.SetPathValue("id", patientID)
	return req
}

func TestQAHandler_AskQuestion_FlattensPrimarySource(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	page := 2
	answerer.On("AnswerQuestion", mock.Anything, "uncle-tan-001", "What is the current kidney function status?").
		Return(&entities.AnswerResult{
			Success:    true,
			Answer:     "eGFR of 18 indicates Stage 4 CKD.",
			Confidence: 0.75,
			Method:     entities.AnswerMethodRAGLLM,
			Sources: []entities.AnswerSource{
				{Document: "referral_nephrology_tan.pdf", Page: &page, Relevance: 0.9, Type: entities.SourceTypeDocumentChunk},
				{Document: "discharge_note.pdf", Type: entities.SourceTypeDocumentChunk},
			},
		}, nil)

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("uncle-tan-001", `{"question":"What is the current kidney function status?"}`))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp qaResponseBody
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "eGFR of 18 indicates Stage 4 CKD.", resp.Answer)
	assert.NotNil(t, resp.SourceDocument)
	assert.Equal(t, "referral_nephrology_tan.pdf", *resp.SourceDocument)
	assert.NotNil(t, resp.SourcePage)
	assert.Equal(t, 2, *resp.SourcePage)
	assert.Equal(t, 0.75, resp.ConfidenceScore)
}

func TestQAHandler_AskQuestion_NoSourcesYieldsNulls(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	answerer.On("AnswerQuestion", mock.Anything, "uncle-tan-001", "Anything new?").
		Return(&entities.AnswerResult{
			Success:    true,
			Answer:     "Insufficient information available to answer that question about Uncle Tan.",
			Confidence: 0.3,
			Method:     entities.AnswerMethodFallback,
			Sources:    []entities.AnswerSource{},
		}, nil)

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("uncle-tan-001", `{"question":"Anything new?"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source_document":null`)
	assert.Contains(t, w.Body.String(), `"source_page":null`)
}

func TestQAHandler_AskQuestion_UnknownPatient(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	answerer.On("AnswerQuestion", mock.Anything, "ghost", "Hello?").
		Return(nil, apperrors.NewNotFoundError("patient not found"))

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("ghost", `{"question":"Hello?"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]string
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "Patient not found", resp["error"])
}

func TestQAHandler_AskQuestion_EmptyQuestion(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	answerer.On("AnswerQuestion", mock.Anything, "uncle-tan-001", "").
		Return(nil, apperrors.NewValidationError("question is required"))

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("uncle-tan-001", `{"question":""}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question is required")
}

func TestQAHandler_AskQuestion_MalformedBody(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("uncle-tan-001", `{"question": not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	answerer.AssertNotCalled(t, "AnswerQuestion")
}

func TestQAHandler_AskQuestion_UnexpectedError(t *testing.T) {
	answerer := new(MockAnswerer)
	handler := handlers.NewQAHandler(answerer)

	answerer.On("AnswerQuestion", mock.Anything, "uncle-tan-001", "Hello?").
		Return(nil, errors.New("connection reset"))

	w := httptest.NewRecorder()
	handler.AskQuestion(w, askRequest("uncle-tan-001", `{"question":"Hello?"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
