package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/repositories"
)

// PostgresSubmissionRepository implements the SubmissionRepository
// interface.
type PostgresSubmissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(config *RepositoryConfig) repositories.SubmissionRepository {
	return &PostgresSubmissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a submission scoped to its owner.
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, region, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Submissions)

	var sub models.Submission
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&sub.ID,
		&sub.OwnerID,
		&sub.Name,
		&sub.Region,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return &sub, nil
}

// List returns all submissions owned by the user, newest first.
func (r *PostgresSubmissionRepository) List(ctx context.Context, ownerID string) ([]models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, region, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, r.tables.Submissions)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]models.Submission, 0)
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(
			&sub.ID,
			&sub.OwnerID,
			&sub.Name,
			&sub.Region,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return subs, nil
}
