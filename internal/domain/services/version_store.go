package services

import (
	"context"
	"time"

	"quill/internal/domain/models/artifact"
)

// VersionStore handles the immutable version history for documents.
//
// History is append-only. Restore follows the non-destructive policy: the
// target version's content is promoted by appending a new version stamped
// now, so the full audit trail survives.
type VersionStore interface {
	// Append persists a new version. Returns *domain.ConflictError when a
	// version with the same (documentID, createdAt) identity exists.
	Append(ctx context.Context, v *artifact.Version) error

	// List returns the version history for a document, oldest first.
	List(ctx context.Context, documentID string) ([]artifact.Version, error)

	// Get fetches one version by composite identity.
	Get(ctx context.Context, documentID string, createdAt time.Time) (*artifact.Version, error)

	// Restore promotes the version at targetCreatedAt to latest by
	// appending a copy stamped now, authored by authorID. Returns the
	// newly created version, or domain.ErrNotFound when the target is
	// missing.
	Restore(ctx context.Context, documentID string, targetCreatedAt time.Time, authorID string) (*artifact.Version, error)

	// CurrentIndex reports the position of the version currently shown in
	// the history navigation. Defaults to the last index; -1 when the
	// document has no versions.
	CurrentIndex(ctx context.Context, documentID string) (int, error)

	// SetCurrentIndex moves the history navigation. The index is clamped
	// to the valid range; a negative index means "back to latest".
	SetCurrentIndex(ctx context.Context, documentID string, index int) (int, error)
}

// SuggestionService handles the editing-suggestion overlay
type SuggestionService interface {
	// SaveSuggestions stores a batch of suggestions for a document.
	SaveSuggestions(ctx context.Context, suggestions []artifact.Suggestion) error

	// ListSuggestions returns a document's suggestions with their anchors
	// resolved against the given content. Stale suggestions (original text
	// no longer present) are included with Offset -1.
	ListSuggestions(ctx context.Context, documentID, content string) ([]AnchoredSuggestion, error)

	// ResolveSuggestion marks a suggestion resolved.
	ResolveSuggestion(ctx context.Context, id string) error
}

// AnchoredSuggestion pairs a stored suggestion with its position in the
// current draft content. Offset is -1 when the anchor no longer matches.
type AnchoredSuggestion struct {
	artifact.Suggestion
	Offset int `json:"offset"`
}
