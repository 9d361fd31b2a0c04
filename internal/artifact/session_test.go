package artifact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/settings"
)

// scriptedSource feeds deltas from a test-owned channel
type scriptedSource struct {
	ch chan artifact.Delta
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{ch: make(chan artifact.Delta, 32)}
}

func (s *scriptedSource) Stream(ctx context.Context) (<-chan artifact.Delta, error) {
	return s.ch, nil
}

func (s *scriptedSource) send(deltas ...artifact.Delta) {
	for _, d := range deltas {
		s.ch <- d
	}
}

// fakeAppender records persisted versions and can inject failures
type fakeAppender struct {
	mu       sync.Mutex
	versions []artifact.Version
	err      error
}

func (f *fakeAppender) Append(ctx context.Context, v *artifact.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.versions = append(f.versions, *v)
	return nil
}

func (f *fakeAppender) appended() []artifact.Version {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]artifact.Version, len(f.versions))
	copy(out, f.versions)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, appender *fakeAppender) *Session {
	t.Helper()
	gate := NewGate(settings.VisibilitySettings{ContentThreshold: 400, ImmediateKinds: []string{"code"}})
	return NewSession(context.Background(), "session-1", "author-1", appender, gate, 32, testLogger())
}

func waitForStatus(t *testing.T, s *Session, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Status() == want
	}, 2*time.Second, 5*time.Millisecond, "session never reached status %s, got %s", want, s.Status())
}

func TestSessionProcessesStreamToCompletion(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTitle, Content: "Notes", Seq: 2},
		artifact.Delta{Type: artifact.DeltaKind, Content: "text", Seq: 3},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "first", Seq: 4},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "first second", Seq: 5},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 6},
	)

	waitForStatus(t, session, SessionComplete)

	versions := appender.appended()
	require.Len(t, versions, 1)
	assert.Equal(t, "doc-1", versions[0].DocumentID)
	assert.Equal(t, "Notes", versions[0].Title)
	assert.Equal(t, "first second", versions[0].Content, "persisted version must reflect the state at finish")
	assert.Equal(t, "author-1", versions[0].AuthorID)

	draft, ok := session.Snapshot()
	require.True(t, ok)
	assert.Equal(t, artifact.StatusIdle, draft.Status)
	assert.Equal(t, 6, session.Applied())
}

func TestSessionSkipsRedeliveredPositions(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "kept", Seq: 2},
		// Re-delivery of position 2 with different payload must be a no-op
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "DUPLICATE", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)

	waitForStatus(t, session, SessionComplete)

	versions := appender.appended()
	require.Len(t, versions, 1)
	assert.Equal(t, "kept", versions[0].Content)
	assert.Equal(t, 3, session.Applied())
}

func TestSessionInterruptDiscardsDraft(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "half-finished", Seq: 2},
	)

	require.Eventually(t, func() bool {
		return session.Applied() == 2
	}, 2*time.Second, 5*time.Millisecond)

	session.Interrupt()
	waitForStatus(t, session, SessionCancelled)

	_, ok := session.Snapshot()
	assert.False(t, ok, "cancelled session must discard its draft")
	assert.Empty(t, appender.appended(), "no version may be persisted without finish")
}

func TestSessionPersistenceFailureKeepsDraft(t *testing.T) {
	appender := &fakeAppender{err: errors.New("connection refused")}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "precious", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)

	waitForStatus(t, session, SessionError)

	draft, ok := session.Snapshot()
	require.True(t, ok, "draft must survive a failed save so nothing is lost")
	assert.Equal(t, "precious", draft.Content)

	var persistErr *domain.PersistenceError
	require.ErrorAs(t, session.Err(), &persistErr)
}

func TestSessionConflictTreatsExistingAsCanonical(t *testing.T) {
	appender := &fakeAppender{err: &domain.ConflictError{
		Message:      "version already exists",
		ResourceType: "version",
		ResourceID:   "doc-1",
	}}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 2},
	)

	waitForStatus(t, session, SessionComplete)
	assert.NoError(t, session.Err())
}

func TestSessionDropsMalformedDeltas(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		// Unknown kind and an id delta without an id are both dropped
		artifact.Delta{Type: "telemetry", Content: "x", Seq: 2},
		artifact.Delta{Type: artifact.DeltaID, Content: "", Seq: 2},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "survived", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)

	waitForStatus(t, session, SessionComplete)

	versions := appender.appended()
	require.Len(t, versions, 1)
	assert.Equal(t, "survived", versions[0].Content)
}

func TestSessionRoutesUserMessageID(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "body", Seq: 2},
		artifact.Delta{Type: artifact.DeltaUserMessageID, Content: "msg-77", Seq: 3},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 4},
	)

	waitForStatus(t, session, SessionComplete)

	assert.Equal(t, "msg-77", session.LastUserMessageID())
	draft, _ := session.Snapshot()
	assert.Equal(t, "body", draft.Content, "message id must not leak into the draft")
}

func TestSessionBroadcastsSnapshotsToClients(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	events := session.AddClient("client-1")
	session.Start(source)

	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "hello", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)

	var received []string
	for event := range events {
		received = append(received, event)
	}

	require.NotEmpty(t, received)
	assert.True(t, strings.Contains(received[0], "draft_update"), "first event should be a draft update, got %q", received[0])
	last := received[len(received)-1]
	assert.True(t, strings.Contains(last, "stream_finish"), "last event should be the finish event, got %q", last)
}

func TestSessionWatermarkTracksProducerSeq(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "first", Seq: 2},
		// Dropped, but its position still advances the watermark
		artifact.Delta{Type: "telemetry", Content: "x", Seq: 3},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "second", Seq: 4},
		// Re-delivery of the latest position must be a no-op even though
		// fewer deltas were applied than positions seen
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "STALE", Seq: 4},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 5},
	)

	waitForStatus(t, session, SessionComplete)

	versions := appender.appended()
	require.Len(t, versions, 1)
	assert.Equal(t, "second", versions[0].Content)
	assert.Equal(t, 4, session.Applied(), "id, two snapshots and finish")
}

func TestSessionRecordsPersistedSeq(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	assert.Equal(t, 0, session.LastPersisted())

	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "body", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)

	waitForStatus(t, session, SessionComplete)
	assert.Equal(t, 3, session.LastPersisted(), "marker advances to the persisted finish position")
}

func TestSessionResetDraftVisibility(t *testing.T) {
	session := newTestSession(t, &fakeAppender{})

	session.ResetDraft(artifact.Version{DocumentID: "doc-1", Kind: artifact.KindText, Content: "restored"})
	draft, ok := session.Snapshot()
	require.True(t, ok)
	assert.True(t, draft.IsVisible)

	session.ResetDraft(artifact.Version{DocumentID: "doc-1", Kind: artifact.KindText, Content: ""})
	draft, ok = session.Snapshot()
	require.True(t, ok)
	assert.False(t, draft.IsVisible, "an empty restored version must not surface an empty panel")
}

func TestSessionCatchupDeliversFinishToLateClients(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(
		artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1},
		artifact.Delta{Type: artifact.DeltaTextContent, Content: "done", Seq: 2},
		artifact.Delta{Type: artifact.DeltaFinish, Seq: 3},
	)
	waitForStatus(t, session, SessionComplete)

	// Connect after completion: catchup must end with the terminal event,
	// not leave the client idling on keepalives
	events := session.AddClient("late-client")
	require.NoError(t, session.Catchup("late-client"))

	first := <-events
	assert.True(t, strings.Contains(first, "draft_update"), "catchup starts from the final draft, got %q", first)
	second := <-events
	assert.True(t, strings.Contains(second, "stream_finish"), "catchup replays the finish event, got %q", second)
}

func TestSessionErrorWhenSourceClosesEarly(t *testing.T) {
	appender := &fakeAppender{}
	session := newTestSession(t, appender)
	source := newScriptedSource()

	session.Start(source)
	source.send(artifact.Delta{Type: artifact.DeltaID, Content: "doc-1", Seq: 1})
	close(source.ch)

	waitForStatus(t, session, SessionError)
	assert.Empty(t, appender.appended())
}
