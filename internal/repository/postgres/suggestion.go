package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/domain/repositories"
)

// PostgresSuggestionRepository implements the SuggestionRepository interface
type PostgresSuggestionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(config *RepositoryConfig) repositories.SuggestionRepository {
	return &PostgresSuggestionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// SaveSuggestions inserts a batch of suggestions for a document
func (r *PostgresSuggestionRepository) SaveSuggestions(ctx context.Context, suggestions []artifact.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, original_text, suggested_text, description, is_resolved, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Suggestions)

	for _, s := range suggestions {
		_, err := executor.Exec(ctx, query,
			s.ID,
			s.DocumentID,
			s.OriginalText,
			s.SuggestedText,
			s.Description,
			s.IsResolved,
			s.AuthorID,
			s.CreatedAt,
		)
		if err != nil {
			if isPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("suggestion %s already exists", s.ID),
					ResourceType: "suggestion",
					ResourceID:   s.ID,
				}
			}
			return fmt.Errorf("save suggestion: %w", err)
		}
	}

	return nil
}

// ListSuggestions returns all suggestions for a document, oldest first
func (r *PostgresSuggestionRepository) ListSuggestions(ctx context.Context, documentID string) ([]artifact.Suggestion, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, document_id, original_text, suggested_text, description, is_resolved, author_id, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at ASC
	`, r.tables.Suggestions)

	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]artifact.Suggestion, 0)
	for rows.Next() {
		var s artifact.Suggestion
		if err := rows.Scan(
			&s.ID,
			&s.DocumentID,
			&s.OriginalText,
			&s.SuggestedText,
			&s.Description,
			&s.IsResolved,
			&s.AuthorID,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}

// ResolveSuggestion marks a suggestion as resolved
func (r *PostgresSuggestionRepository) ResolveSuggestion(ctx context.Context, id string) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_resolved = TRUE
		WHERE id = $1
	`, r.tables.Suggestions)

	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("resolve suggestion: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
