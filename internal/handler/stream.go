package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/artifact"
	"quill/internal/httputil"
)

// StreamHandler exposes streaming sessions over HTTP
type StreamHandler struct {
	registry *artifact.SessionRegistry
	sse      *SSEHandler
	logger   *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(registry *artifact.SessionRegistry, sse *SSEHandler, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		registry: registry,
		sse:      sse,
		logger:   logger,
	}
}

// StreamSession streams live draft snapshots via SSE
// GET /api/sessions/{id}/stream
func (h *StreamHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid session ID format")
		return
	}

	h.sse.StreamSession(w, r, sessionID)
}

// StreamDocument resolves the open session for a document and streams it
// GET /api/documents/{id}/stream
func (h *StreamHandler) StreamDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	session := h.registry.FindByDocument(documentID)
	if session == nil {
		httputil.RespondError(w, http.StatusNotFound, "no open stream for this document")
		return
	}

	h.sse.StreamSession(w, r, session.ID())
}

// InterruptSession cancels a streaming session. The draft is discarded
// without persisting unless finish was already processed.
// POST /api/sessions/{id}/interrupt
func (h *StreamHandler) InterruptSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid session ID format")
		return
	}

	session := h.registry.Get(sessionID)
	if session == nil {
		httputil.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	session.Interrupt()

	h.logger.Info("session interrupted", "session_id", sessionID)

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"status":     session.Status(),
	})
}

// GetSession reports a session's status and current draft snapshot. The
// trailing user message id is included for the deletion flow.
// GET /api/sessions/{id}
func (h *StreamHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid session ID format")
		return
	}

	session := h.registry.Get(sessionID)
	if session == nil {
		httputil.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	resp := map[string]interface{}{
		"session_id":           sessionID,
		"status":               session.Status(),
		"deltas_applied":       session.Applied(),
		"last_persisted_seq":   session.LastPersisted(),
		"last_user_message_id": session.LastUserMessageID(),
	}
	if draft, ok := session.Snapshot(); ok {
		resp["draft"] = draft
	}
	if err := session.Err(); err != nil {
		resp["error"] = err.Error()
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
