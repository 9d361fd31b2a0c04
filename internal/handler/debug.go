package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"quill/internal/artifact"
	"quill/internal/artifact/lorem"
	"quill/internal/config"
	artifactModels "quill/internal/domain/models/artifact"
	"quill/internal/httputil"
	"quill/internal/settings"
)

// DebugHandler starts lorem-backed streaming sessions without a generative
// backend. Dev environment only; never wire these routes in production.
type DebugHandler struct {
	registry *artifact.SessionRegistry
	versions artifact.VersionAppender
	gate     artifact.Gate
	stream   settings.StreamSettings
	cfg      *config.Config
	logger   *slog.Logger
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(
	registry *artifact.SessionRegistry,
	versions artifact.VersionAppender,
	gate artifact.Gate,
	stream settings.StreamSettings,
	cfg *config.Config,
	logger *slog.Logger,
) *DebugHandler {
	return &DebugHandler{
		registry: registry,
		versions: versions,
		gate:     gate,
		stream:   stream,
		cfg:      cfg,
		logger:   logger,
	}
}

// GenerateRequest selects the fake model and artifact kind
type GenerateRequest struct {
	Model string `json:"model,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// GenerateDocument starts a streaming session fed by the lorem source
// POST /debug/api/documents/generate
func (h *DebugHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	model := req.Model
	if model == "" {
		model = h.cfg.DevModel
	}
	kind := artifactModels.KindText
	if req.Kind == string(artifactModels.KindCode) {
		kind = artifactModels.KindCode
	}

	sessionID := uuid.New().String()

	// The session outlives this request; tie it to the server lifetime,
	// not the request context.
	session := artifact.NewSession(
		context.Background(),
		sessionID,
		httputil.GetUserID(r),
		h.versions,
		h.gate,
		h.stream.ClientBuffer,
		h.logger,
	)

	if !h.registry.Register(session) {
		httputil.RespondError(w, http.StatusConflict, "session already exists")
		return
	}

	source := lorem.NewSource(model, kind)
	session.Start(source)

	h.logger.Warn("DEBUG: lorem generation session started",
		"session_id", sessionID,
		"model", model,
		"kind", kind,
	)

	httputil.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"session_id":  sessionID,
		"document_id": source.DocumentID(),
		"model":       model,
		"kind":        kind,
		"stream_url":  "/api/sessions/" + sessionID + "/stream",
	})
}
