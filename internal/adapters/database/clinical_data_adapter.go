package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// ClinicalDataAdapter implements ClinicalDataRepository
type ClinicalDataAdapter struct {
	client *dbclient.Client
	db     *goqu.Database
}

// NewClinicalDataAdapter creates a new clinical data adapter
func NewClinicalDataAdapter(client *dbclient.Client) repositories.ClinicalDataRepository {
	return &ClinicalDataAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create appends a new clinical datum
func (a *ClinicalDataAdapter) Create(ctx context.Context, datum *entities.ClinicalDatum) error {
	referenceRange := sql.NullString{}
	if datum.ReferenceRange != nil {
		referenceRange = sql.NullString{String: *datum.ReferenceRange, Valid: true}
	}

	record := goqu.Record{
		"id":              datum.ID,
		"patient_id":      datum.PatientID,
		"category":        string(datum.Category),
		"name":            datum.Name,
		"value":           datum.Value,
		"unit":            datum.Unit,
		"reference_range": referenceRange,
		"recorded_at":     datum.RecordedAt,
	}

	query, args, err := a.db.Insert("clinical_data").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create clinical datum", err)
	}

	return nil
}

// ListRecent retrieves the most recent data points for a patient and
// category, recency descending, bounded by limit.
func (a *ClinicalDataAdapter) ListRecent(ctx context.Context, patientID string, category entities.ClinicalCategory, limit int) ([]entities.ClinicalDatum, error) {
	ds := a.db.Select(
		"id", "patient_id", "category", "name", "value", "unit", "reference_range", "recorded_at",
	).From("clinical_data").
		Where(goqu.Ex{
			"patient_id": patientID,
			"category":   string(category),
		}).
		Order(goqu.I("recorded_at").Desc(), goqu.I("name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clinical data", err)
	}
	defer rows.Close()

	var data []entities.ClinicalDatum
	for rows.Next() {
		var datum entities.ClinicalDatum
		var category string
		var referenceRange sql.NullString

		err := rows.Scan(
			&datum.ID,
			&datum.PatientID,
			&category,
			&datum.Name,
			&datum.Value,
			&datum.Unit,
			&referenceRange,
			&datum.RecordedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinical datum", err)
		}

		datum.Category = entities.ClinicalCategory(category)
		if referenceRange.Valid {
			datum.ReferenceRange = &referenceRange.String
		}

		data = append(data, datum)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating clinical data", err)
	}

	return data, nil
}
