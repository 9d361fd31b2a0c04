package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"quill/internal/artifact"
	artifactModels "quill/internal/domain/models/artifact"
	"quill/internal/handler/sse"
	"quill/internal/httputil"
)

// SSEHandler streams live draft snapshots over Server-Sent Events
type SSEHandler struct {
	registry *artifact.SessionRegistry
	logger   *slog.Logger
	config   *sse.Config
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(registry *artifact.SessionRegistry, logger *slog.Logger, config *sse.Config) *SSEHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &SSEHandler{
		registry: registry,
		logger:   logger,
		config:   config,
	}
}

// StreamSession handles the SSE connection for one streaming session.
// The client first receives a catchup snapshot of the current draft, then
// every published snapshot until the session reaches a terminal state.
func (h *SSEHandler) StreamSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	clientID := uuid.New().String()

	h.logger.Info("SSE connection request",
		"session_id", sessionID,
		"client_id", clientID,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := h.registry.Get(sessionID)
	if session == nil {
		// Establish the SSE connection first, then report the error as an
		// event so EventSource clients see it instead of a failed request.
		event, _ := artifactModels.NewStreamErrorEvent(sessionID, "streaming not active for this session", false)
		fmt.Fprint(w, event)
		flusher.Flush()
		h.logger.Warn("session not found for SSE connection",
			"session_id", sessionID,
			"client_id", clientID,
		)
		return
	}

	eventChan := session.AddClient(clientID)
	defer func() {
		session.RemoveClient(clientID)
		h.logger.Debug("SSE client removed",
			"session_id", sessionID,
			"client_id", clientID,
		)
	}()

	// Catchup so reconnects start from the present draft state
	if err := session.Catchup(clientID); err != nil {
		h.logger.Warn("catchup failed, client will receive live events only",
			"session_id", sessionID,
			"client_id", clientID,
			"error", err,
		)
	}

	// Keepalive shares the select loop with event writes; the response
	// writer is not safe for concurrent use.
	writer := sse.NewKeepAliveWriter(w, flusher)
	ticker := time.NewTicker(h.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("client disconnected",
				"session_id", sessionID,
				"client_id", clientID,
			)
			return

		case <-ticker.C:
			if err := writer.WriteKeepAlive(); err != nil {
				h.logger.Info("client disconnected during keepalive",
					"session_id", sessionID,
					"client_id", clientID,
					"error", err,
				)
				return
			}

		case event, ok := <-eventChan:
			if !ok {
				// Session reached a terminal state and closed its clients
				h.logger.Debug("event channel closed, ending stream",
					"session_id", sessionID,
					"client_id", clientID,
				)
				return
			}

			if _, err := fmt.Fprint(w, event); err != nil {
				h.logger.Info("client disconnected during event write",
					"session_id", sessionID,
					"client_id", clientID,
					"error", err,
				)
				return
			}
			flusher.Flush()
		}
	}
}
