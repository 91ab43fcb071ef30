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

// DocumentAdapter implements DocumentRepository
type DocumentAdapter struct {
	client *dbclient.Client
	db     *goqu.Database
}

// NewDocumentAdapter creates a new document adapter
func NewDocumentAdapter(client *dbclient.Client) repositories.DocumentRepository {
	return &DocumentAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create stores a document record
func (a *DocumentAdapter) Create(ctx context.Context, document *entities.Document) error {
	record := goqu.Record{
		"id":            document.ID,
		"patient_id":    document.PatientID,
		"filename":      document.Filename,
		"document_type": document.DocumentType,
		"created_at":    document.CreatedAt,
	}

	query, args, err := a.db.Insert("documents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create document", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (a *DocumentAdapter) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "filename", "document_type", "created_at",
	).From("documents").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	document := &entities.Document{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&document.ID,
		&document.PatientID,
		&document.Filename,
		&document.DocumentType,
		&document.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("document with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get document", err)
	}

	return document, nil
}

// ListByPatient retrieves a patient's documents, newest first
func (a *DocumentAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "filename", "document_type", "created_at",
	).From("documents").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list documents", err)
	}
	defer rows.Close()

	var documents []*entities.Document
	for rows.Next() {
		document := &entities.Document{}
		err := rows.Scan(
			&document.ID,
			&document.PatientID,
			&document.Filename,
			&document.DocumentType,
			&document.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan document", err)
		}
		documents = append(documents, document)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating documents", err)
	}

	return documents, nil
}

// CreateChunks stores a document's chunks as one atomic insert
func (a *DocumentAdapter) CreateChunks(ctx context.Context, chunks []entities.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		pageNumber := sql.NullInt64{}
		if chunk.PageNumber != nil {
			pageNumber = sql.NullInt64{Int64: int64(*chunk.PageNumber), Valid: true}
		}

		records = append(records, goqu.Record{
			"id":          chunk.ID,
			"document_id": chunk.DocumentID,
			"chunk_text":  chunk.Text,
			"chunk_index": chunk.ChunkIndex,
			"page_number": pageNumber,
		})
	}

	query, args, err := a.db.Insert("document_chunks").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create document chunks", err)
	}

	return nil
}

// ListChunksByPatient retrieves every stored chunk across a patient's
// documents with the parent filename joined in.
func (a *DocumentAdapter) ListChunksByPatient(ctx context.Context, patientID string) ([]entities.DocumentChunk, error) {
	query, args, err := a.db.Select(
		goqu.I("dc.id"),
		goqu.I("dc.document_id"),
		goqu.I("dc.chunk_text"),
		goqu.I("dc.chunk_index"),
		goqu.I("dc.page_number"),
		goqu.I("d.filename"),
	).From(goqu.T("document_chunks").As("dc")).
		Join(goqu.T("documents").As("d"), goqu.On(goqu.I("dc.document_id").Eq(goqu.I("d.id")))).
		Where(goqu.I("d.patient_id").Eq(patientID)).
		Order(goqu.I("dc.document_id").Asc(), goqu.I("dc.chunk_index").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build chunk query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list document chunks", err)
	}
	defer rows.Close()

	var chunks []entities.DocumentChunk
	for rows.Next() {
		var chunk entities.DocumentChunk
		var pageNumber sql.NullInt64

		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Text,
			&chunk.ChunkIndex,
			&pageNumber,
			&chunk.Filename,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan document chunk", err)
		}

		if pageNumber.Valid {
			page := int(pageNumber.Int64)
			chunk.PageNumber = &page
		}

		chunks = append(chunks, chunk)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating document chunks", err)
	}

	return chunks, nil
}
