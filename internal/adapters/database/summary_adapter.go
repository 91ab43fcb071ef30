package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// SummaryAdapter implements SummaryRepository
type SummaryAdapter struct {
	client *dbclient.Client
	db     *goqu.Database
}

// NewSummaryAdapter creates a new summary adapter
func NewSummaryAdapter(client *dbclient.Client) repositories.SummaryRepository {
	return &SummaryAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create stores a newly generated summary
func (a *SummaryAdapter) Create(ctx context.Context, summary *entities.Summary) error {
	confidence := sql.NullFloat64{}
	if summary.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *summary.Confidence, Valid: true}
	}

	record := goqu.Record{
		"id":               summary.ID,
		"patient_id":       summary.PatientID,
		"summary_text":     summary.Text,
		"confidence_score": confidence,
		"generated_at":     summary.GeneratedAt,
	}

	query, args, err := a.db.Insert("ai_summaries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create summary", err)
	}

	return nil
}

// GetLatest retrieves the most recent summary for a patient
func (a *SummaryAdapter) GetLatest(ctx context.Context, patientID string) (*entities.Summary, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "summary_text", "confidence_score", "generated_at",
	).From("ai_summaries").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("generated_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	summary := &entities.Summary{}
	var confidence sql.NullFloat64

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&summary.ID,
		&summary.PatientID,
		&summary.Text,
		&confidence,
		&summary.GeneratedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("summary for patient %s not found", patientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get summary", err)
	}

	if confidence.Valid {
		summary.Confidence = &confidence.Float64
	}

	return summary, nil
}
