package repositories

import (
	"context"

	"dossier/internal/domain/models/organizer"
)

// DocumentRepository is the document source consumed once per tree
// construction: the ordered document records for a submission, metadata
// only (the organizer never touches content).
type DocumentRepository interface {
	ListBySubmission(ctx context.Context, submissionID string) ([]organizer.DocumentRecord, error)
}

// OrderRepository persists a flattened tree ordering in one atomic
// write: each document's module folder assignment and position.
type OrderRepository interface {
	SaveOrder(ctx context.Context, submissionID string, entries []organizer.OrderEntry) error
}
