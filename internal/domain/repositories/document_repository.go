package repositories

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// DocumentRepository defines the interface for documents and their chunks
type DocumentRepository interface {
	// Create stores a document record
	Create(ctx context.Context, document *entities.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*entities.Document, error)

	// ListByPatient retrieves a patient's documents, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error)

	// CreateChunks stores the chunks of a document in one transaction
	CreateChunks(ctx context.Context, chunks []entities.DocumentChunk) error

	// ListChunksByPatient retrieves every stored chunk across a patient's
	// documents with the parent filename joined in, ordered by document
	// then chunk index
	ListChunksByPatient(ctx context.Context, patientID string) ([]entities.DocumentChunk, error)
}
