package repositories

import (
	"context"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
)

// CachedAnswerRepository defines the interface for pre-computed QA pairs
type CachedAnswerRepository interface {
	// Create stores a QA pair
	Create(ctx context.Context, answer *entities.CachedAnswer) error

	// FindMatch returns the best QA pair whose stored question is a
	// case-insensitive substring of the incoming question. Ties break
	// deterministically: highest confidence, then newest, then lowest ID.
	// Returns a not-found error when nothing matches.
	FindMatch(ctx context.Context, patientID, question string) (*entities.CachedAnswer, error)
}
