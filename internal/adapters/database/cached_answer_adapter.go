package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// CachedAnswerAdapter implements CachedAnswerRepository
type CachedAnswerAdapter struct {
	client *dbclient.Client
	db     *goqu.Database
}

// NewCachedAnswerAdapter creates a new cached answer adapter
func NewCachedAnswerAdapter(client *dbclient.Client) repositories.CachedAnswerRepository {
	return &CachedAnswerAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create stores a QA pair
func (a *CachedAnswerAdapter) Create(ctx context.Context, answer *entities.CachedAnswer) error {
	sourceDocumentID := sql.NullString{}
	if answer.SourceDocumentID != nil {
		sourceDocumentID = sql.NullString{String: *answer.SourceDocumentID, Valid: true}
	}
	sourcePage := sql.NullInt64{}
	if answer.SourcePage != nil {
		sourcePage = sql.NullInt64{Int64: int64(*answer.SourcePage), Valid: true}
	}
	confidence := sql.NullFloat64{}
	if answer.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *answer.Confidence, Valid: true}
	}

	record := goqu.Record{
		"id":                 answer.ID,
		"patient_id":         answer.PatientID,
		"question":           answer.Question,
		"answer":             answer.Answer,
		"source_document_id": sourceDocumentID,
		"source_page":        sourcePage,
		"confidence_score":   confidence,
		"created_at":         answer.CreatedAt,
	}

	query, args, err := a.db.Insert("qa_pairs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create cached answer", err)
	}

	return nil
}

// FindMatch returns the best QA pair whose stored question is a
// case-insensitive substring of the incoming question. Among multiple
// matches the highest confidence wins, then the newest row, then the
// lowest ID, so results never depend on engine-default ordering.
func (a *CachedAnswerAdapter) FindMatch(ctx context.Context, patientID, question string) (*entities.CachedAnswer, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "question", "answer", "source_document_id", "source_page", "confidence_score", "created_at",
	).From("qa_pairs").
		Where(
			goqu.Ex{"patient_id": patientID},
			goqu.L("? LIKE '%' || LOWER(question) || '%'", strings.ToLower(question)),
		).
		Order(
			goqu.L("COALESCE(confidence_score, 0)").Desc(),
			goqu.I("created_at").Desc(),
			goqu.I("id").Asc(),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build match query", err)
	}

	answer := &entities.CachedAnswer{}
	var sourceDocumentID sql.NullString
	var sourcePage sql.NullInt64
	var confidence sql.NullFloat64

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&answer.ID,
		&answer.PatientID,
		&answer.Question,
		&answer.Answer,
		&sourceDocumentID,
		&sourcePage,
		&confidence,
		&answer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no cached answer found for patient %s", patientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find cached answer", err)
	}

	if sourceDocumentID.Valid {
		answer.SourceDocumentID = &sourceDocumentID.String
	}
	if sourcePage.Valid {
		page := int(sourcePage.Int64)
		answer.SourcePage = &page
	}
	if confidence.Valid {
		answer.Confidence = &confidence.Float64
	}

	return answer, nil
}
