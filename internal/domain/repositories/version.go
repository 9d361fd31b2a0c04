package repositories

import (
	"context"
	"time"

	"quill/internal/domain/models/artifact"
)

// VersionRepository is the persistence collaborator for immutable document
// versions. Versions are append-only: there is no update operation.
type VersionRepository interface {
	// SaveVersion inserts a new version. Returns a *domain.ConflictError
	// when (documentID, createdAt) already exists; existing history is
	// never touched.
	SaveVersion(ctx context.Context, v *artifact.Version) error

	// ListVersions returns all versions for a document ascending by
	// createdAt. An unknown document yields an empty slice, not an error.
	ListVersions(ctx context.Context, documentID string) ([]artifact.Version, error)

	// GetVersion fetches a single version by its composite identity.
	// Returns domain.ErrNotFound when absent.
	GetVersion(ctx context.Context, documentID string, createdAt time.Time) (*artifact.Version, error)

	// DeleteVersionsAfter removes every version newer than createdAt.
	// Only exercised when the destructive restore policy is configured;
	// the default restore policy never calls it.
	DeleteVersionsAfter(ctx context.Context, documentID string, createdAt time.Time) error
}

// SuggestionRepository stores the editing-suggestion overlay. The engine
// never flips resolution state; that arrives from the UI collaborator.
type SuggestionRepository interface {
	SaveSuggestions(ctx context.Context, suggestions []artifact.Suggestion) error
	ListSuggestions(ctx context.Context, documentID string) ([]artifact.Suggestion, error)
	ResolveSuggestion(ctx context.Context, id string) error
}
