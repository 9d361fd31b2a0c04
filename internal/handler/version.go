package handler

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/artifact"
	"quill/internal/config"
	artifactModels "quill/internal/domain/models/artifact"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// VersionHandler handles document version HTTP requests
type VersionHandler struct {
	store    services.VersionStore
	registry *artifact.SessionRegistry
	logger   *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(store services.VersionStore, registry *artifact.SessionRegistry, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// SaveVersionRequest is the payload for an explicit save
type SaveVersionRequest struct {
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Validate checks the save payload
func (r SaveVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.Kind, validation.Required, validation.In("text", "code")),
		validation.Field(&r.Content, validation.Length(0, config.MaxContentLength)),
	)
}

// RestoreVersionRequest identifies the version to promote to latest
type RestoreVersionRequest struct {
	CreatedAt time.Time `json:"created_at"`
}

// ListVersions lists a document's version history, oldest first
// GET /api/documents/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	versions, err := h.store.List(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"versions":    versions,
	})
}

// SaveVersion creates a version from user-edited content
// POST /api/documents/{id}/versions
func (h *VersionHandler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	var req SaveVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version := artifactModels.Version{
		DocumentID: documentID,
		CreatedAt:  time.Now().UTC(),
		Title:      req.Title,
		Kind:       artifactModels.Kind(req.Kind),
		Content:    req.Content,
		AuthorID:   httputil.GetUserID(r),
	}

	if err := h.store.Append(r.Context(), &version); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// RestoreVersion promotes an older version to latest by appending a copy
// stamped now. The live draft, when one is streaming for this document,
// resets to the restored content with idle status.
// POST /api/documents/{id}/versions/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	var req RestoreVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CreatedAt.IsZero() {
		httputil.RespondError(w, http.StatusBadRequest, "created_at is required")
		return
	}

	restored, err := h.store.Restore(r.Context(), documentID, req.CreatedAt, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	if session := h.registry.FindByDocument(documentID); session != nil {
		session.ResetDraft(*restored)
		h.logger.Info("live draft reset after restore",
			"document_id", documentID,
			"session_id", session.ID(),
		)
	}

	httputil.RespondJSON(w, http.StatusCreated, restored)
}

// GetVersionIndex reports the history navigation position
// GET /api/documents/{id}/versions/index
func (h *VersionHandler) GetVersionIndex(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	index, err := h.store.CurrentIndex(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"index":       index,
	})
}

// SetVersionIndexRequest moves the history navigation. A negative index
// means "back to latest".
type SetVersionIndexRequest struct {
	Index int `json:"index"`
}

// SetVersionIndex moves the history navigation position
// PUT /api/documents/{id}/versions/index
func (h *VersionHandler) SetVersionIndex(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	var req SetVersionIndexRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	index, err := h.store.SetCurrentIndex(r.Context(), documentID, req.Index)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"index":       index,
	})
}

// HealthCheck responds to liveness probes
// GET /health
func (h *VersionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
