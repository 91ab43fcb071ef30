package database

import (
	"context"

	dbclient "github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/clients/database"
	apperrors "github.com/zurielhealth/clinicalcanvas/backend/pkg/errors"
)

// schemaStatements is engine-neutral DDL: every statement runs unchanged
// on SQLite and PostgreSQL.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS clinical_data (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		reference_range TEXT,
		recorded_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ai_summaries (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		summary_text TEXT NOT NULL,
		confidence_score REAL,
		generated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		filename TEXT NOT NULL,
		document_type TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id),
		chunk_text TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		page_number INTEGER
	)`,

	`CREATE TABLE IF NOT EXISTS qa_pairs (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		source_document_id TEXT REFERENCES documents(id),
		source_page INTEGER,
		confidence_score REAL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clinical_data_patient ON clinical_data(patient_id, category, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_summaries_patient ON ai_summaries(patient_id, generated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_patient ON documents(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_document_chunks_document ON document_chunks(document_id, chunk_index)`,
	`CREATE INDEX IF NOT EXISTS idx_qa_pairs_patient ON qa_pairs(patient_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
// Safe to run on every startup.
func EnsureSchema(ctx context.Context, client *dbclient.Client) error {
	for _, stmt := range schemaStatements {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewInternalError("failed to ensure schema", err)
		}
	}
	return nil
}
