package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

// versionStore implements the VersionStore interface
type versionStore struct {
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger

	// History navigation state lives in memory only; an absent entry
	// means "latest". Restores and appends clear the entry so navigation
	// snaps back to the newest version.
	navMu  sync.Mutex
	navIdx map[string]int
}

// NewVersionStore creates a new version store
func NewVersionStore(
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.VersionStore {
	return &versionStore{
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
		navIdx:      make(map[string]int),
	}
}

// Append persists a new version. Conflicts and repository failures come
// back typed so the coordinator can distinguish "already saved" from
// "save failed, draft must be retained".
func (s *versionStore) Append(ctx context.Context, v *artifact.Version) error {
	if v.DocumentID == "" {
		return &domain.ValidationError{Message: "document id is required"}
	}
	if v.CreatedAt.IsZero() {
		return &domain.ValidationError{Message: "created_at is required"}
	}

	if err := s.versionRepo.SaveVersion(ctx, v); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return err
		}
		return &domain.PersistenceError{
			Op:      "append",
			Message: fmt.Sprintf("save version for document %s", v.DocumentID),
			Cause:   err,
		}
	}

	s.resetNavigation(v.DocumentID)

	s.logger.Debug("version appended",
		"document_id", v.DocumentID,
		"created_at", v.CreatedAt,
		"kind", v.Kind,
		"content_length", len(v.Content))

	return nil
}

// List returns the version history for a document, oldest first
func (s *versionStore) List(ctx context.Context, documentID string) ([]artifact.Version, error) {
	versions, err := s.versionRepo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, &domain.PersistenceError{
			Op:      "list",
			Message: fmt.Sprintf("list versions for document %s", documentID),
			Cause:   err,
		}
	}
	return versions, nil
}

// Get fetches one version by composite identity
func (s *versionStore) Get(ctx context.Context, documentID string, createdAt time.Time) (*artifact.Version, error) {
	v, err := s.versionRepo.GetVersion(ctx, documentID, createdAt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("version for document %s not found", documentID)}
		}
		return nil, &domain.PersistenceError{
			Op:      "get",
			Message: fmt.Sprintf("get version for document %s", documentID),
			Cause:   err,
		}
	}
	return v, nil
}

// Restore promotes the target version to latest by appending a copy
// stamped now. The read and the write run in one transaction so a
// concurrent restore of the same target cannot interleave between them.
func (s *versionStore) Restore(ctx context.Context, documentID string, targetCreatedAt time.Time, authorID string) (*artifact.Version, error) {
	var restored *artifact.Version

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		target, err := s.versionRepo.GetVersion(txCtx, documentID, targetCreatedAt)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.NotFoundError{Message: fmt.Sprintf("restore target for document %s not found", documentID)}
			}
			return &domain.PersistenceError{
				Op:      "restore",
				Message: fmt.Sprintf("load restore target for document %s", documentID),
				Cause:   err,
			}
		}

		promoted := artifact.Version{
			DocumentID: target.DocumentID,
			CreatedAt:  time.Now().UTC(),
			Title:      target.Title,
			Kind:       target.Kind,
			Content:    target.Content,
			AuthorID:   authorID,
		}

		if err := s.versionRepo.SaveVersion(txCtx, &promoted); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				return err
			}
			return &domain.PersistenceError{
				Op:      "restore",
				Message: fmt.Sprintf("append restored version for document %s", documentID),
				Cause:   err,
			}
		}

		restored = &promoted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.resetNavigation(documentID)

	s.logger.Info("version restored",
		"document_id", documentID,
		"target_created_at", targetCreatedAt,
		"new_created_at", restored.CreatedAt)

	return restored, nil
}

// CurrentIndex reports the history navigation position, defaulting to the
// last index. -1 means the document has no versions yet.
func (s *versionStore) CurrentIndex(ctx context.Context, documentID string) (int, error) {
	versions, err := s.List(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return -1, nil
	}

	s.navMu.Lock()
	idx, ok := s.navIdx[documentID]
	s.navMu.Unlock()

	if !ok || idx >= len(versions) {
		return len(versions) - 1, nil
	}
	return idx, nil
}

// SetCurrentIndex moves the history navigation and returns the effective
// index after clamping. A negative index clears the entry, snapping the
// navigation back to latest.
func (s *versionStore) SetCurrentIndex(ctx context.Context, documentID string, index int) (int, error) {
	versions, err := s.List(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return -1, nil
	}

	if index < 0 || index >= len(versions) {
		s.resetNavigation(documentID)
		return len(versions) - 1, nil
	}

	s.navMu.Lock()
	s.navIdx[documentID] = index
	s.navMu.Unlock()

	return index, nil
}

func (s *versionStore) resetNavigation(documentID string) {
	s.navMu.Lock()
	delete(s.navIdx, documentID)
	s.navMu.Unlock()
}
