package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/handlers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

type MockPatientRepo struct {
	mock.Mock
}

func (m *MockPatientRepo) Create(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepo) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepo) List(ctx context.Context) ([]*entities.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

func (m *MockPatientRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClinicalRepo struct {
	mock.Mock
}

func (m *MockClinicalRepo) Create(ctx context.Context, datum *entities.ClinicalDatum) error {
	args := m.Called(ctx, datum)
	return args.Error(0)
}

func (m *MockClinicalRepo) ListRecent(ctx context.Context, patientID string, category entities.ClinicalCategory, limit int) ([]entities.ClinicalDatum, error) {
	args := m.Called(ctx, patientID, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ClinicalDatum), args.Error(1)
}

type MockSummaryRepo struct {
	mock.Mock
}

func (m *MockSummaryRepo) Create(ctx context.Context, summary *entities.Summary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryRepo) GetLatest(ctx context.Context, patientID string) (*entities.Summary, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Summary), args.Error(1)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, document *entities.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *MockDocumentRepo) CreateChunks(ctx context.Context, chunks []entities.DocumentChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockDocumentRepo) ListChunksByPatient(ctx context.Context, patientID string) ([]entities.DocumentChunk, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DocumentChunk), args.Error(1)
}

type patientListItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type patientDetailBody struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	AISummary  *string `json:"ai_summary"`
	VitalsData []struct {
		Name           string  `json:"name"`
		Value          string  `json:"value"`
		Unit           string  `json:"unit"`
		ReferenceRange *string `json:"reference_range"`
		DateRecorded   string  `json:"date_recorded"`
	} `json:"vitals_data"`
	LabResults []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"lab_results"`
	Documents []struct {
		ID           string `json:"id"`
		Filename     string `json:"filename"`
		DocumentType string `json:"document_type"`
	} `json:"documents"`
}

func newPatientHandler() (*handlers.PatientHandler, *MockPatientRepo, *MockClinicalRepo, *MockSummaryRepo, *MockDocumentRepo) {
	patientRepo := new(MockPatientRepo)
	clinicalRepo := new(MockClinicalRepo)
	summaryRepo := new(MockSummaryRepo)
	documentRepo := new(MockDocumentRepo)
	handler := handlers.NewPatientHandler(patientRepo, clinicalRepo, summaryRepo, documentRepo)
	return handler, patientRepo, clinicalRepo, summaryRepo, documentRepo
}

func TestPatientHandler_ListPatients(t *testing.T) {
	handler, patientRepo, _, _, _ := newPatientHandler()

	patientRepo.On("List", mock.Anything).Return([]*entities.Patient{
		{ID: "mr-kumar-003", Name: "Mr. Kumar", Age: 61, Gender: "Male"},
		{ID: "mrs-chen-002", Name: "Mrs. Chen", Age: 54, Gender: "Female"},
		{ID: "uncle-tan-001", Name: "Uncle Tan", Age: 68, Gender: "Male"},
	}, nil)

	req := httptest.NewRequest("GET", "/api/patients", nil)
	w := httptest.NewRecorder()

	handler.ListPatients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []patientListItem
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Len(t, resp, 3)
	assert.Equal(t, "Mr. Kumar", resp[0].Name)
	assert.Equal(t, "uncle-tan-001", resp[2].ID)
	assert.Equal(t, 68, resp[2].Age)
}

func TestPatientHandler_ListPatients_EmptyIsArray(t *testing.T) {
	handler, patientRepo, _, _, _ := newPatientHandler()

	patientRepo.On("List", mock.Anything).Return([]*entities.Patient{}, nil)

	req := httptest.NewRequest("GET", "/api/patients", nil)
	w := httptest.NewRecorder()

	handler.ListPatients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestPatientHandler_GetPatient_FullPayload(t *testing.T) {
	handler, patientRepo, clinicalRepo, summaryRepo, documentRepo := newPatientHandler()

	recorded := time.Date(2024, 7, 28, 0, 0, 0, 0, time.UTC)
	refRange := "0.7-1.3"

	patientRepo.On("GetByID", mock.Anything, "uncle-tan-001").Return(&entities.Patient{
		ID: "uncle-tan-001", Name: "Uncle Tan", Age: 68, Gender: "Male",
	}, nil)
	summaryRepo.On("GetLatest", mock.Anything, "uncle-tan-001").Return(&entities.Summary{
		PatientID: "uncle-tan-001",
		Text:      "68-year-old male with progressive chronic kidney disease (Stage 4).",
	}, nil)
	clinicalRepo.On("ListRecent", mock.Anything, "uncle-tan-001", entities.CategoryVital, 0).Return([]entities.ClinicalDatum{
		{Name: "heart_rate", Value: "78", Unit: "bpm", RecordedAt: recorded},
	}, nil)
	clinicalRepo.On("ListRecent", mock.Anything, "uncle-tan-001", entities.CategoryLab, 0).Return([]entities.ClinicalDatum{
		{Name: "creatinine", Value: "4.2", Unit: "mg/dL", ReferenceRange: &refRange, RecordedAt: recorded},
	}, nil)
	documentRepo.On("ListByPatient", mock.Anything, "uncle-tan-001").Return([]*entities.Document{
		{ID: "doc-1", Filename: "referral_nephrology_tan.pdf", DocumentType: "referral"},
	}, nil)

	req := httptest.NewRequest("GET", "/api/patients/uncle-tan-001", nil)
	req.SetPathValue("id", "uncle-tan-001")
	w := httptest.NewRecorder()

	handler.GetPatient(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp patientDetailBody
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "uncle-tan-001", resp.ID)
	assert.Equal(t, "Uncle Tan", resp.Name)
	assert.NotNil(t, resp.AISummary)
	assert.Contains(t, *resp.AISummary, "chronic kidney disease")
	assert.Len(t, resp.VitalsData, 1)
	assert.Equal(t, "heart_rate", resp.VitalsData[0].Name)
	assert.Equal(t, "2024-07-28", resp.VitalsData[0].DateRecorded)
	assert.Len(t, resp.LabResults, 1)
	assert.Equal(t, "4.2", resp.LabResults[0].Value)
	assert.Len(t, resp.Documents, 1)
	assert.Equal(t, "referral_nephrology_tan.pdf", resp.Documents[0].Filename)
}

func TestPatientHandler_GetPatient_NoSummaryYet(t *testing.T) {
	handler, patientRepo, clinicalRepo, summaryRepo, documentRepo := newPatientHandler()

	patientRepo.On("GetByID", mock.Anything, "mrs-chen-002").Return(&entities.Patient{
		ID: "mrs-chen-002", Name: "Mrs. Chen", Age: 54, Gender: "Female",
	}, nil)
	summaryRepo.On("GetLatest", mock.Anything, "mrs-chen-002").
		Return(nil, apperrors.NewNotFoundError("summary not found"))
	clinicalRepo.On("ListRecent", mock.Anything, "mrs-chen-002", entities.CategoryVital, 0).
		Return([]entities.ClinicalDatum{}, nil)
	clinicalRepo.On("ListRecent", mock.Anything, "mrs-chen-002", entities.CategoryLab, 0).
		Return([]entities.ClinicalDatum{}, nil)
	documentRepo.On("ListByPatient", mock.Anything, "mrs-chen-002").
		Return([]*entities.Document{}, nil)

	req := httptest.NewRequest("GET", "/api/patients/mrs-chen-002", nil)
	req.SetPathValue("id", "mrs-chen-002")
	w := httptest.NewRecorder()

	handler.GetPatient(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp patientDetailBody
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Nil(t, resp.AISummary)
	assert.NotNil(t, resp.VitalsData)
	assert.Empty(t, resp.VitalsData)
}

func TestPatientHandler_GetPatient_NotFound(t *testing.T) {
	handler, patientRepo, _, _, _ := newPatientHandler()

	patientRepo.On("GetByID", mock.Anything, "ghost").
		Return(nil, apperrors.NewNotFoundError("patient not found"))

	req := httptest.NewRequest("GET", "/api/patients/ghost", nil)
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	handler.GetPatient(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]string
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "Patient not found", resp["error"])
}

func TestPatientHandler_GetPatient_MissingID(t *testing.T) {
	handler, _, _, _, _ := newPatientHandler()

	req := httptest.NewRequest("GET", "/api/patients/", nil)
	w := httptest.NewRecorder()

	handler.GetPatient(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
