package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dossier/internal/domain/models/organizer"
	"dossier/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository and
// OrderRepository interfaces over one documents table.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(config *RepositoryConfig) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ repositories.DocumentRepository = (*PostgresDocumentRepository)(nil)
var _ repositories.OrderRepository = (*PostgresDocumentRepository)(nil)

// ListBySubmission returns the document records for one submission in
// stored module/position order. Metadata only; the organizer never
// loads content.
func (r *PostgresDocumentRepository) ListBySubmission(ctx context.Context, submissionID string) ([]organizer.DocumentRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, title, module, module_hint, document_type, qc_status
		FROM %s
		WHERE submission_id = $1 AND deleted_at IS NULL
		ORDER BY module, position, created_at
	`, r.tables.Documents)

	rows, err := r.pool.Query(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]organizer.DocumentRecord, 0)
	for rows.Next() {
		var (
			doc    organizer.DocumentRecord
			status string
		)
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Module,
			&doc.ModuleHint,
			&doc.DocumentType,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Status = organizer.ParseQCStatus(status)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	r.logger.Debug("documents loaded",
		"submission_id", submissionID,
		"count", len(docs),
	)
	return docs, nil
}

// SaveOrder writes one flattened tree ordering in a single transaction:
// every document's module assignment and position within that module.
// All rows commit or none do, so a failed save leaves the stored order
// exactly as it was.
func (r *PostgresDocumentRepository) SaveOrder(ctx context.Context, submissionID string, entries []organizer.OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET module = $1, position = $2, updated_at = now()
		WHERE id = $3 AND submission_id = $4
	`, r.tables.Documents)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.Module, e.Position, e.DocumentID, submissionID)
	}

	results := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("save order entry: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close order batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order save: %w", err)
	}

	r.logger.Info("document order saved",
		"submission_id", submissionID,
		"entries", len(entries),
	)
	return nil
}
