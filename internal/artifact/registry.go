package artifact

import (
	"context"
	"sync"
	"time"
)

// SessionRegistry manages all active document stream sessions.
//
// Design:
//   - One session per document stream (keyed by session id)
//   - Thread-safe access via RWMutex
//   - Background cleanup removes terminal sessions after a retention period
//
// Lifecycle:
//  1. The stream starter creates a session and registers it
//  2. SSE clients and the console/tool-runner surface look sessions up here
//  3. The session reaches a terminal state (complete/error/cancelled)
//  4. Cleanup removes it after the retention period
type SessionRegistry struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	cleanupInterval time.Duration
	retentionPeriod time.Duration

	// Tracking for cleanup
	terminalTimes map[string]time.Time
	timesMu       sync.RWMutex
}

// NewSessionRegistry creates a registry with the given cleanup cadence.
func NewSessionRegistry(cleanupInterval, retentionPeriod time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions:        make(map[string]*Session),
		cleanupInterval: cleanupInterval,
		retentionPeriod: retentionPeriod,
		terminalTimes:   make(map[string]time.Time),
	}
}

// Register registers a session. Returns false if one already exists for
// this id.
func (r *SessionRegistry) Register(session *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID()]; exists {
		return false
	}

	r.sessions[session.ID()] = session
	return true
}

// Get retrieves the session for an id, or nil.
func (r *SessionRegistry) Get(sessionID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[sessionID]
}

// Remove removes a session. Safe to call even if it doesn't exist.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)

	r.timesMu.Lock()
	delete(r.terminalTimes, sessionID)
	r.timesMu.Unlock()
}

// StartCleanup runs the background cleanup loop until ctx is done.
func (r *SessionRegistry) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

// cleanup removes sessions that have been terminal longer than the
// retention period.
func (r *SessionRegistry) cleanup() {
	now := time.Now()

	var toRemove []string

	r.mu.RLock()
	for sessionID, session := range r.sessions {
		status := session.Status()
		if status == SessionStreaming {
			continue
		}

		r.timesMu.RLock()
		terminalAt, tracked := r.terminalTimes[sessionID]
		r.timesMu.RUnlock()

		if tracked && now.Sub(terminalAt) > r.retentionPeriod {
			toRemove = append(toRemove, sessionID)
		} else if !tracked {
			r.timesMu.Lock()
			r.terminalTimes[sessionID] = now
			r.timesMu.Unlock()
		}
	}
	r.mu.RUnlock()

	if len(toRemove) > 0 {
		r.mu.Lock()
		for _, sessionID := range toRemove {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()

		r.timesMu.Lock()
		for _, sessionID := range toRemove {
			delete(r.terminalTimes, sessionID)
		}
		r.timesMu.Unlock()
	}
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// SessionIDs returns all registered session ids.
func (r *SessionRegistry) SessionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}

	return ids
}

// FindByDocument returns the session whose current draft belongs to the
// given document, or nil. Used by the restore flow to reset the live draft.
func (r *SessionRegistry) FindByDocument(documentID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if draft, ok := session.Snapshot(); ok && draft.DocumentID == documentID {
			return session
		}
	}
	return nil
}
