package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"quill/internal/artifact"
	artifactModels "quill/internal/domain/models/artifact"
	"quill/internal/domain/services"
	"quill/internal/httputil"
)

// SuggestionHandler handles the editing-suggestion overlay HTTP requests
type SuggestionHandler struct {
	suggestions services.SuggestionService
	versions    services.VersionStore
	registry    *artifact.SessionRegistry
	logger      *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(
	suggestions services.SuggestionService,
	versions services.VersionStore,
	registry *artifact.SessionRegistry,
	logger *slog.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		versions:    versions,
		registry:    registry,
		logger:      logger,
	}
}

// SuggestionInput is one suggestion in a create batch
type SuggestionInput struct {
	OriginalText  string `json:"original_text"`
	SuggestedText string `json:"suggested_text"`
	Description   string `json:"description"`
}

// CreateSuggestionsRequest is the payload for saving a suggestion batch
type CreateSuggestionsRequest struct {
	Suggestions []SuggestionInput `json:"suggestions"`
}

// CreateSuggestions saves a batch of suggestions for a document
// POST /api/documents/{id}/suggestions
func (h *SuggestionHandler) CreateSuggestions(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	var req CreateSuggestionsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Suggestions) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "suggestions are required")
		return
	}

	authorID := httputil.GetUserID(r)
	now := time.Now().UTC()

	batch := make([]artifactModels.Suggestion, 0, len(req.Suggestions))
	for _, in := range req.Suggestions {
		batch = append(batch, artifactModels.Suggestion{
			ID:            uuid.New().String(),
			DocumentID:    documentID,
			OriginalText:  in.OriginalText,
			SuggestedText: in.SuggestedText,
			Description:   in.Description,
			AuthorID:      authorID,
			CreatedAt:     now,
		})
	}

	if err := h.suggestions.SaveSuggestions(r.Context(), batch); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"document_id": documentID,
		"suggestions": batch,
	})
}

// ListSuggestions lists a document's suggestions anchored against the most
// current content: the live draft when a stream is open, otherwise the
// latest persisted version.
// GET /api/documents/{id}/suggestions
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document ID format")
		return
	}

	content, err := h.currentContent(r, documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	anchored, err := h.suggestions.ListSuggestions(r.Context(), documentID, content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID,
		"suggestions": anchored,
	})
}

// ResolveSuggestion marks a suggestion resolved
// PATCH /api/suggestions/{id}/resolve
func (h *SuggestionHandler) ResolveSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid suggestion ID format")
		return
	}

	if err := h.suggestions.ResolveSuggestion(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"resolved": true,
	})
}

// currentContent picks the content suggestions anchor against
func (h *SuggestionHandler) currentContent(r *http.Request, documentID string) (string, error) {
	if session := h.registry.FindByDocument(documentID); session != nil {
		if draft, ok := session.Snapshot(); ok {
			return draft.Content, nil
		}
	}

	versions, err := h.versions.List(r.Context(), documentID)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", nil
	}
	return versions[len(versions)-1].Content, nil
}
