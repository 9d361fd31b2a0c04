package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
)

// Session status values
const (
	SessionStreaming = "streaming"
	SessionComplete  = "complete"
	SessionError     = "error"
	SessionCancelled = "cancelled"
)

// Session is the synchronization coordinator for one document stream.
//
// Responsibilities:
//   - Drain the delta channel strictly in arrival order (single goroutine,
//     one in-flight reducer application, never two deltas concurrently)
//   - Apply Reduce then the visibility gate for every newly observed delta;
//     re-delivered stream positions are no-ops
//   - Publish a by-value draft snapshot to every connected observer after
//     each applied delta
//   - On the finish delta, await version persistence before advancing the
//     last-persisted marker
//   - Route user-message-id deltas to the trailing-message register
//   - Handle interruption: a cancelled session discards its draft without
//     persisting unless finish was already processed
//
// The session exclusively owns its Draft. External readers get copies.
type Session struct {
	id       string
	authorID string
	versions VersionAppender
	gate     Gate
	console  *Console
	logger   *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc

	// Draft state: mutated only by the run goroutine, snapshot guarded for
	// concurrent readers.
	mu            sync.RWMutex
	draft         *artifact.Draft
	sawCodeDelta  bool
	applied       int // count of deltas applied
	maxSeq        int // highest producer seq observed; the idempotence watermark
	lastPersisted int // producer seq of the last persisted finish
	lastUserMsgID string

	// SSE client management
	clients      map[string]chan string
	clientsMu    sync.RWMutex
	clientBuffer int

	// Terminal state
	status      string
	statusErr   error
	finishEvent string // formatted stream_finish event, set on completion
	statusMu    sync.RWMutex
}

// NewSession creates a coordinator for one document stream.
func NewSession(
	parentCtx context.Context,
	sessionID string,
	authorID string,
	versions VersionAppender,
	gate Gate,
	clientBuffer int,
	logger *slog.Logger,
) *Session {
	ctx, cancel := context.WithCancel(parentCtx)

	return &Session{
		id:           sessionID,
		authorID:     authorID,
		versions:     versions,
		gate:         gate,
		console:      NewConsole(),
		logger:       logger,
		ctx:          ctx,
		cancelFunc:   cancel,
		clients:      make(map[string]chan string),
		clientBuffer: clientBuffer,
		status:       SessionStreaming,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Console returns the session's execution-result aggregator.
func (s *Session) Console() *Console {
	return s.console
}

// Start begins draining the delta source (non-blocking).
func (s *Session) Start(source DeltaSource) {
	go s.run(source)
}

// run is the single-flight processing loop.
func (s *Session) run(source DeltaSource) {
	deltas, err := source.Stream(s.ctx)
	if err != nil {
		s.handleError(fmt.Errorf("failed to start delta source: %w", err))
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			s.handleCancellation()
			return

		case delta, ok := <-deltas:
			if !ok {
				// Producer closed the channel. If finish was processed the
				// session already reached a terminal state; otherwise the
				// stream was aborted upstream.
				if s.Status() == SessionStreaming {
					s.handleError(errors.New("delta stream closed before finish"))
				}
				return
			}

			if done := s.applyDelta(delta); done {
				return
			}
		}
	}
}

// applyDelta processes one delta. Returns true when the session reached a
// terminal state.
func (s *Session) applyDelta(delta artifact.Delta) bool {
	// Malformed deltas are dropped with a diagnostic, never fatal.
	if err := delta.Validate(); err != nil {
		var malformed *domain.MalformedDeltaError
		if errors.As(err, &malformed) {
			s.logger.Warn("dropping malformed delta",
				"session_id", s.id,
				"delta_kind", malformed.Kind,
				"reason", malformed.Message,
			)
			return false
		}
		s.logger.Warn("dropping invalid delta", "session_id", s.id, "error", err)
		return false
	}

	s.mu.Lock()
	// Idempotence: a re-delivered stream position is a no-op. The
	// watermark is the highest seq seen, not the applied count, so it
	// stays aligned with the producer even after dropped deltas.
	if delta.Seq > 0 && delta.Seq <= s.maxSeq {
		s.mu.Unlock()
		s.logger.Debug("skipping already-processed delta",
			"session_id", s.id,
			"seq", delta.Seq,
			"watermark", s.maxSeq,
		)
		return false
	}
	if delta.Seq > s.maxSeq {
		s.maxSeq = delta.Seq
	}

	if delta.Type == artifact.DeltaUserMessageID {
		// Side channel: trailing-message register, draft untouched.
		s.lastUserMsgID = delta.Content
		s.applied++
		s.mu.Unlock()
		return false
	}

	if delta.Type == artifact.DeltaCodeContent {
		s.sawCodeDelta = true
	}

	next := Reduce(s.draft, delta)
	next = s.gate.Apply(next, s.sawCodeDelta)
	s.draft = &next
	s.applied++
	seq := s.maxSeq
	snapshot := next
	s.mu.Unlock()

	s.publishDraft(seq, snapshot)

	if delta.Type == artifact.DeltaFinish {
		s.handleFinish(snapshot, seq)
		return true
	}

	return false
}

// handleFinish persists the finished draft and completes the session.
// Persistence is awaited before the last-persisted marker advances, so a
// new stream can never race an in-flight save.
func (s *Session) handleFinish(draft artifact.Draft, seq int) {
	version := artifact.VersionFromDraft(draft, time.Now(), s.authorID)

	if err := s.versions.Append(s.ctx, &version); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			// Duplicate version identity: the pre-existing version is
			// canonical and the session still completes.
			s.logger.Warn("version already exists, treating existing as canonical",
				"session_id", s.id,
				"document_id", draft.DocumentID,
				"resource_id", conflict.ResourceID,
			)
		} else {
			// Draft stays in memory so nothing is silently lost; retry is
			// caller-initiated through the explicit save path.
			s.handleError(&domain.PersistenceError{
				Op:      "append",
				Message: fmt.Sprintf("failed to persist version for document %s", draft.DocumentID),
				Cause:   err,
			})
			return
		}
	}

	s.mu.Lock()
	s.lastPersisted = seq
	s.mu.Unlock()

	event, _ := artifact.NewStreamFinishEvent(
		s.id,
		draft.DocumentID,
		version.CreatedAt.Format(time.RFC3339Nano),
		seq,
	)

	s.statusMu.Lock()
	s.status = SessionComplete
	// Kept for catchup: late clients replay the terminal event instead of
	// idling on keepalives.
	s.finishEvent = event
	s.statusMu.Unlock()

	s.broadcast(event)
	s.closeClients()

	s.logger.Info("stream finished, version persisted",
		"session_id", s.id,
		"document_id", draft.DocumentID,
		"deltas", seq,
	)
}

// handleError transitions the session to the error state. The draft is left
// in place so its last state stays readable.
func (s *Session) handleError(err error) {
	s.statusMu.Lock()
	s.status = SessionError
	s.statusErr = err
	s.statusMu.Unlock()

	s.logger.Error("session error", "session_id", s.id, "error", err)

	event, _ := artifact.NewStreamErrorEvent(s.id, err.Error(), false)
	s.broadcast(event)
	s.closeClients()
}

// handleCancellation discards the draft without persisting.
func (s *Session) handleCancellation() {
	s.statusMu.Lock()
	if s.status != SessionStreaming {
		s.statusMu.Unlock()
		return
	}
	s.status = SessionCancelled
	s.statusMu.Unlock()

	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()

	s.logger.Info("session cancelled, draft discarded", "session_id", s.id)

	event, _ := artifact.NewStreamErrorEvent(s.id, "stream was cancelled", true)
	s.broadcast(event)
	s.closeClients()
}

// Interrupt cancels the streaming session. Safe to call multiple times.
func (s *Session) Interrupt() {
	s.cancelFunc()
}

// Status returns "streaming", "complete", "error" or "cancelled".
func (s *Session) Status() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Err returns the error if the session status is "error", nil otherwise.
func (s *Session) Err() error {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.statusErr
}

// Snapshot returns a copy of the current draft and whether one exists.
func (s *Session) Snapshot() (artifact.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.draft == nil {
		return artifact.Draft{}, false
	}
	return *s.draft, true
}

// Applied returns the number of deltas applied so far.
func (s *Session) Applied() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// LastPersisted returns the producer seq of the last persisted finish, or
// 0 when nothing has been persisted yet.
func (s *Session) LastPersisted() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersisted
}

// watermark returns the highest producer seq observed.
func (s *Session) watermark() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSeq
}

// LastUserMessageID returns the trailing-message register, consumed by the
// message-deletion flow.
func (s *Session) LastUserMessageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUserMsgID
}

// ResetDraft replaces the live draft after a restore: restored content,
// idle status. Visibility follows the restored content; an empty version
// does not surface an empty panel.
func (s *Session) ResetDraft(v artifact.Version) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := artifact.Draft{
		DocumentID: v.DocumentID,
		Title:      v.Title,
		Kind:       v.Kind,
		Content:    v.Content,
		Status:     artifact.StatusIdle,
		IsVisible:  v.Content != "",
	}
	s.draft = &draft
}

// AddClient registers a new SSE observer. Returns a channel of
// SSE-formatted event strings; the client reads until it closes.
func (s *Session) AddClient(clientID string) <-chan string {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	eventChan := make(chan string, s.clientBuffer)
	s.clients[clientID] = eventChan

	return eventChan
}

// RemoveClient unregisters an SSE observer.
func (s *Session) RemoveClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if ch, exists := s.clients[clientID]; exists {
		close(ch)
		delete(s.clients, clientID)
	}
}

// Catchup sends the current draft snapshot (or terminal event) to a newly
// connected client so reconnects start from the present state. Delivery
// goes through the client registry so a session that went terminal after
// AddClient cannot be written to past closeClients.
func (s *Session) Catchup(clientID string) error {
	status := s.Status()

	if draft, ok := s.Snapshot(); ok {
		event, err := artifact.NewDraftUpdateEvent(s.id, s.watermark(), draft)
		if err != nil {
			return fmt.Errorf("failed to build catchup event: %w", err)
		}
		s.sendToClient(clientID, event)
	}

	switch status {
	case SessionComplete:
		s.statusMu.RLock()
		event := s.finishEvent
		s.statusMu.RUnlock()
		if event != "" {
			s.sendToClient(clientID, event)
		}
	case SessionError:
		msg := "unknown error"
		if err := s.Err(); err != nil {
			msg = err.Error()
		}
		event, _ := artifact.NewStreamErrorEvent(s.id, msg, false)
		s.sendToClient(clientID, event)
	case SessionCancelled:
		event, _ := artifact.NewStreamErrorEvent(s.id, "stream was cancelled", true)
		s.sendToClient(clientID, event)
	}

	return nil
}

// sendToClient delivers one event to a single registered client. A full or
// already-removed client is skipped, same as broadcast.
func (s *Session) sendToClient(clientID, event string) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	ch, exists := s.clients[clientID]
	if !exists {
		return
	}

	select {
	case ch <- event:
	default:
		s.logger.Debug("client channel full, dropping catchup event",
			"session_id", s.id,
			"client_id", clientID,
		)
	}
}

// publishDraft broadcasts a draft snapshot to all observers.
func (s *Session) publishDraft(seq int, draft artifact.Draft) {
	event, err := artifact.NewDraftUpdateEvent(s.id, seq, draft)
	if err != nil {
		s.logger.Error("failed to marshal draft update", "session_id", s.id, "error", err)
		return
	}
	s.broadcast(event)
}

// broadcast sends an SSE event to all connected clients. A full client
// channel is skipped; the client recovers via snapshot catchup.
func (s *Session) broadcast(event string) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for clientID, ch := range s.clients {
		select {
		case ch <- event:
		default:
			s.logger.Debug("client channel full, dropping event",
				"session_id", s.id,
				"client_id", clientID,
			)
		}
	}
}

// closeClients closes every client channel so SSE connections end.
func (s *Session) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for clientID, ch := range s.clients {
		close(ch)
		delete(s.clients, clientID)
	}
}
