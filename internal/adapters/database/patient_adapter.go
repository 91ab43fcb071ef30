package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/repositories"
	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// PatientAdapter implements PatientRepository
type PatientAdapter struct {
	client *dbclient.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *dbclient.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create creates a new patient
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	record := goqu.Record{
		"id":         patient.ID,
		"name":       patient.Name,
		"age":        patient.Age,
		"gender":     patient.Gender,
		"created_at": patient.CreatedAt,
	}

	query, args, err := a.db.Insert("patients").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create patient", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query, args, err := a.db.Select(
		"id", "name", "age", "gender", "created_at",
	).From("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient := &entities.Patient{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&patient.ID,
		&patient.Name,
		&patient.Age,
		&patient.Gender,
		&patient.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}

	return patient, nil
}

// List retrieves all patients ordered by name
func (a *PatientAdapter) List(ctx context.Context) ([]*entities.Patient, error) {
	query, args, err := a.db.Select(
		"id", "name", "age", "gender", "created_at",
	).From("patients").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	defer rows.Close()

	var patients []*entities.Patient
	for rows.Next() {
		patient := &entities.Patient{}
		err := rows.Scan(
			&patient.ID,
			&patient.Name,
			&patient.Age,
			&patient.Gender,
			&patient.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan patient", err)
		}
		patients = append(patients, patient)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating patients", err)
	}

	return patients, nil
}

// Delete removes a patient and every dependent row in one transaction.
func (a *PatientAdapter) Delete(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	documentIDs := a.db.Select("id").From("documents").Where(goqu.Ex{"patient_id": id})

	deletes := []*goqu.DeleteDataset{
		a.db.Delete("document_chunks").Where(goqu.I("document_id").In(documentIDs)),
		a.db.Delete("qa_pairs").Where(goqu.Ex{"patient_id": id}),
		a.db.Delete("documents").Where(goqu.Ex{"patient_id": id}),
		a.db.Delete("ai_summaries").Where(goqu.Ex{"patient_id": id}),
		a.db.Delete("clinical_data").Where(goqu.Ex{"patient_id": id}),
	}

	for _, ds := range deletes {
		query, args, err := ds.ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build delete query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to delete patient data", err)
		}
	}

	query, args, err := a.db.Delete("patients").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit delete", err)
	}

	return nil
}
