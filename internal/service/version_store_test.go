package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/domain/repositories"
)

// memVersionRepo is an in-memory VersionRepository for service tests
type memVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]artifact.Version // documentID -> versions
	saveErr  error
}

func newMemVersionRepo() *memVersionRepo {
	return &memVersionRepo{versions: make(map[string][]artifact.Version)}
}

func (m *memVersionRepo) SaveVersion(ctx context.Context, v *artifact.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, existing := range m.versions[v.DocumentID] {
		if existing.CreatedAt.Equal(v.CreatedAt) {
			return &domain.ConflictError{
				Message:      "version already exists",
				ResourceType: "version",
				ResourceID:   v.DocumentID,
			}
		}
	}
	m.versions[v.DocumentID] = append(m.versions[v.DocumentID], *v)
	return nil
}

func (m *memVersionRepo) ListVersions(ctx context.Context, documentID string) ([]artifact.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]artifact.Version, len(m.versions[documentID]))
	copy(out, m.versions[documentID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memVersionRepo) GetVersion(ctx context.Context, documentID string, createdAt time.Time) (*artifact.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions[documentID] {
		if v.CreatedAt.Equal(createdAt) {
			out := v
			return &out, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", documentID, domain.ErrNotFound)
}

func (m *memVersionRepo) DeleteVersionsAfter(ctx context.Context, documentID string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.versions[documentID][:0]
	for _, v := range m.versions[documentID] {
		if !v.CreatedAt.After(createdAt) {
			kept = append(kept, v)
		}
	}
	m.versions[documentID] = kept
	return nil
}

// passthroughTx runs the function without a real transaction
type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestStore(repo *memVersionRepo) *versionStore {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVersionStore(repo, passthroughTx{}, logger).(*versionStore)
}

func seedHistory(t *testing.T, store *versionStore, documentID string, contents ...string) []artifact.Version {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	versions := make([]artifact.Version, 0, len(contents))
	for i, content := range contents {
		v := artifact.Version{
			DocumentID: documentID,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Title:      "Doc",
			Kind:       artifact.KindText,
			Content:    content,
			AuthorID:   "author-1",
		}
		require.NoError(t, store.Append(context.Background(), &v))
		versions = append(versions, v)
	}
	return versions
}

func TestVersionStoreAppendAndListOrdering(t *testing.T) {
	store := newTestStore(newMemVersionRepo())
	seedHistory(t, store, "doc-1", "v1", "v2", "v3")

	versions, err := store.List(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "v1", versions[0].Content)
	assert.Equal(t, "v3", versions[2].Content)
	assert.True(t, versions[0].CreatedAt.Before(versions[1].CreatedAt))
}

func TestVersionStoreDuplicateAppendConflicts(t *testing.T) {
	store := newTestStore(newMemVersionRepo())
	seeded := seedHistory(t, store, "doc-1", "v1")

	dup := seeded[0]
	dup.Content = "overwrite attempt"
	err := store.Append(context.Background(), &dup)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	// Existing history is untouched
	versions, _ := store.List(context.Background(), "doc-1")
	require.Len(t, versions, 1)
	assert.Equal(t, "v1", versions[0].Content)
}

func TestVersionStoreAppendWrapsRepositoryFailure(t *testing.T) {
	repo := newMemVersionRepo()
	repo.saveErr = fmt.Errorf("connection reset")
	store := newTestStore(repo)

	err := store.Append(context.Background(), &artifact.Version{
		DocumentID: "doc-1",
		CreatedAt:  time.Now(),
	})

	var persistErr *domain.PersistenceError
	require.ErrorAs(t, err, &persistErr)
}

func TestVersionStoreListUnknownDocument(t *testing.T) {
	store := newTestStore(newMemVersionRepo())

	versions, err := store.List(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, versions, "unknown document yields an empty history, not an error")
}

func TestVersionStoreRestoreAppendsAsNew(t *testing.T) {
	store := newTestStore(newMemVersionRepo())
	seeded := seedHistory(t, store, "doc-1", "v1", "v2", "v3")

	restored, err := store.Restore(context.Background(), "doc-1", seeded[0].CreatedAt, "restorer")
	require.NoError(t, err)

	assert.Equal(t, "v1", restored.Content, "restored version carries the target's content")
	assert.Equal(t, "restorer", restored.AuthorID)
	assert.True(t, restored.CreatedAt.After(seeded[2].CreatedAt), "restored version must be the newest")

	// Non-destructive: all four versions survive, target content is latest
	versions, _ := store.List(context.Background(), "doc-1")
	require.Len(t, versions, 4)
	assert.Equal(t, "v1", versions[3].Content)
	assert.Equal(t, "v2", versions[1].Content, "intervening versions are preserved")
}

func TestVersionStoreRestoreMissingTarget(t *testing.T) {
	store := newTestStore(newMemVersionRepo())
	seedHistory(t, store, "doc-1", "v1")

	_, err := store.Restore(context.Background(), "doc-1", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), "restorer")

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// No state change
	versions, _ := store.List(context.Background(), "doc-1")
	assert.Len(t, versions, 1)
}

func TestVersionStoreCurrentIndex(t *testing.T) {
	store := newTestStore(newMemVersionRepo())
	ctx := context.Background()

	// No versions yet
	idx, err := store.CurrentIndex(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	seeded := seedHistory(t, store, "doc-1", "v1", "v2", "v3")

	// Defaults to the last index
	idx, err = store.CurrentIndex(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// Navigate back
	idx, err = store.SetCurrentIndex(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, _ = store.CurrentIndex(ctx, "doc-1")
	assert.Equal(t, 0, idx)

	// Negative index snaps back to latest
	idx, err = store.SetCurrentIndex(ctx, "doc-1", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// Out-of-range clamps to latest
	idx, err = store.SetCurrentIndex(ctx, "doc-1", 99)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// A restore resets navigation to latest
	_, err = store.SetCurrentIndex(ctx, "doc-1", 1)
	require.NoError(t, err)
	_, err = store.Restore(ctx, "doc-1", seeded[0].CreatedAt, "restorer")
	require.NoError(t, err)
	idx, _ = store.CurrentIndex(ctx, "doc-1")
	assert.Equal(t, 3, idx, "restore snaps navigation back to the new latest")
}
