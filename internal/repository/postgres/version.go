package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// SaveVersion inserts a new immutable version row. The table carries a
// primary key on (document_id, created_at), so a replayed save surfaces as
// a unique violation and is reported as a conflict without touching the
// stored row.
func (r *PostgresVersionRepository) SaveVersion(ctx context.Context, v *artifact.Version) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, created_at, title, kind, content, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Versions)

	_, err := executor.Exec(ctx, query,
		v.DocumentID,
		v.CreatedAt,
		v.Title,
		v.Kind,
		v.Content,
		v.AuthorID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version at %s already exists for document %s", v.CreatedAt.Format(time.RFC3339Nano), v.DocumentID),
				ResourceType: "version",
				ResourceID:   v.DocumentID,
			}
		}
		return fmt.Errorf("save version: %w", err)
	}

	return nil
}

// ListVersions returns the full version history for a document, oldest
// first. A document with no versions yields an empty slice.
func (r *PostgresVersionRepository) ListVersions(ctx context.Context, documentID string) ([]artifact.Version, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT document_id, created_at, title, kind, content, author_id
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at ASC
	`, r.tables.Versions)

	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := make([]artifact.Version, 0)
	for rows.Next() {
		var v artifact.Version
		if err := rows.Scan(
			&v.DocumentID,
			&v.CreatedAt,
			&v.Title,
			&v.Kind,
			&v.Content,
			&v.AuthorID,
		); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// GetVersion retrieves a single version by its composite identity
func (r *PostgresVersionRepository) GetVersion(ctx context.Context, documentID string, createdAt time.Time) (*artifact.Version, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT document_id, created_at, title, kind, content, author_id
		FROM %s
		WHERE document_id = $1 AND created_at = $2
	`, r.tables.Versions)

	var v artifact.Version
	err := executor.QueryRow(ctx, query, documentID, createdAt).Scan(
		&v.DocumentID,
		&v.CreatedAt,
		&v.Title,
		&v.Kind,
		&v.Content,
		&v.AuthorID,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s@%s: %w", documentID, createdAt.Format(time.RFC3339Nano), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &v, nil
}

// DeleteVersionsAfter removes every version strictly newer than createdAt.
// Reserved for the destructive restore policy; the default policy keeps
// history intact and never calls this.
func (r *PostgresVersionRepository) DeleteVersionsAfter(ctx context.Context, documentID string, createdAt time.Time) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND created_at > $2
	`, r.tables.Versions)

	if _, err := executor.Exec(ctx, query, documentID, createdAt); err != nil {
		return fmt.Errorf("delete versions after: %w", err)
	}

	return nil
}
