package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/artifact"
	"quill/internal/config"
	artifactModels "quill/internal/domain/models/artifact"
	"quill/internal/httputil"
)

// ConsoleHandler exposes the per-session execution console. Tool runners
// post results here; the UI polls outputs plus the revision counter that
// drives auto-scroll.
type ConsoleHandler struct {
	registry *artifact.SessionRegistry
	logger   *slog.Logger
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(registry *artifact.SessionRegistry, logger *slog.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		registry: registry,
		logger:   logger,
	}
}

// UpsertConsoleRequest is one execution result from a tool runner
type UpsertConsoleRequest struct {
	ID      string                 `json:"id"`
	Content string                 `json:"content"`
	Status  string                 `json:"status"`
	Error   map[string]interface{} `json:"error,omitempty"`
}

// Validate checks the upsert payload
func (r UpsertConsoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Content, validation.Length(0, config.MaxConsoleOutputLength)),
		validation.Field(&r.Status, validation.Required, validation.In(
			string(artifactModels.ConsoleInProgress),
			string(artifactModels.ConsoleCompleted),
			string(artifactModels.ConsoleFailed),
		)),
	)
}

// UpsertOutput inserts or replaces an execution result by id. A replayed
// result replaces in place; ordering stays first-seen.
// POST /api/sessions/{id}/console
func (h *ConsoleHandler) UpsertOutput(w http.ResponseWriter, r *http.Request) {
	console, ok := h.console(w, r)
	if !ok {
		return
	}

	var req UpsertConsoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	console.Upsert(artifactModels.ConsoleOutput{
		ID:      req.ID,
		Content: req.Content,
		Status:  artifactModels.ConsoleStatus(req.Status),
		Error:   req.Error,
	})

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"revision": console.Revision(),
		"count":    console.Len(),
	})
}

// ListOutputs returns outputs in first-seen order with the revision counter
// GET /api/sessions/{id}/console
func (h *ConsoleHandler) ListOutputs(w http.ResponseWriter, r *http.Request) {
	console, ok := h.console(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"outputs":  console.Outputs(),
		"revision": console.Revision(),
	})
}

// ClearOutputs empties the console. Clearing never happens implicitly.
// DELETE /api/sessions/{id}/console
func (h *ConsoleHandler) ClearOutputs(w http.ResponseWriter, r *http.Request) {
	console, ok := h.console(w, r)
	if !ok {
		return
	}

	console.Clear()

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"revision": console.Revision(),
	})
}

// console resolves the session's console or writes an error response
func (h *ConsoleHandler) console(w http.ResponseWriter, r *http.Request) (*artifact.Console, bool) {
	sessionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid session ID format")
		return nil, false
	}

	session := h.registry.Get(sessionID)
	if session == nil {
		httputil.RespondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}

	return session.Console(), true
}
