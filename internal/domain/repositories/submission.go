package repositories

import (
	"context"

	"dossier/internal/domain/models"
)

// SubmissionRepository reads submission records. Organizer sessions use
// it to resolve a submission's region and verify ownership.
type SubmissionRepository interface {
	// GetByID returns the submission if it exists and belongs to the
	// owner; otherwise domain.ErrNotFound.
	GetByID(ctx context.Context, id, ownerID string) (*models.Submission, error)

	// List returns all submissions owned by the user, newest first.
	List(ctx context.Context, ownerID string) ([]models.Submission, error)
}
