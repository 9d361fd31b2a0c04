package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/domain"
	"quill/internal/domain/models/artifact"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
)

// suggestionService implements the SuggestionService interface
type suggestionService struct {
	suggestionRepo repositories.SuggestionRepository
	logger         *slog.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(suggestionRepo repositories.SuggestionRepository, logger *slog.Logger) services.SuggestionService {
	return &suggestionService{
		suggestionRepo: suggestionRepo,
		logger:         logger,
	}
}

// SaveSuggestions validates and stores a batch of suggestions
func (s *suggestionService) SaveSuggestions(ctx context.Context, suggestions []artifact.Suggestion) error {
	for i, sg := range suggestions {
		if err := validation.ValidateStruct(&sg,
			validation.Field(&sg.ID, validation.Required),
			validation.Field(&sg.DocumentID, validation.Required),
			validation.Field(&sg.OriginalText, validation.Required),
			validation.Field(&sg.SuggestedText, validation.Required),
		); err != nil {
			return &domain.ValidationError{Message: fmt.Sprintf("suggestion %d: %v", i, err)}
		}
	}

	if err := s.suggestionRepo.SaveSuggestions(ctx, suggestions); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return err
		}
		return &domain.PersistenceError{
			Op:      "save",
			Message: "save suggestions",
			Cause:   err,
		}
	}

	s.logger.Debug("suggestions saved", "count", len(suggestions))
	return nil
}

// ListSuggestions returns a document's suggestions anchored against the
// given content. Anchors are resolved lazily at read time so stored
// suggestions survive content rewrites; a stale anchor comes back as -1
// instead of being dropped.
func (s *suggestionService) ListSuggestions(ctx context.Context, documentID, content string) ([]services.AnchoredSuggestion, error) {
	suggestions, err := s.suggestionRepo.ListSuggestions(ctx, documentID)
	if err != nil {
		return nil, &domain.PersistenceError{
			Op:      "list",
			Message: fmt.Sprintf("list suggestions for document %s", documentID),
			Cause:   err,
		}
	}

	anchored := make([]services.AnchoredSuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		anchored = append(anchored, services.AnchoredSuggestion{
			Suggestion: sg,
			Offset:     sg.AnchorIn(content),
		})
	}
	return anchored, nil
}

// ResolveSuggestion marks a suggestion resolved
func (s *suggestionService) ResolveSuggestion(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Message: "suggestion id is required"}
	}

	if err := s.suggestionRepo.ResolveSuggestion(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: fmt.Sprintf("suggestion %s not found", id)}
		}
		return &domain.PersistenceError{
			Op:      "resolve",
			Message: fmt.Sprintf("resolve suggestion %s", id),
			Cause:   err,
		}
	}

	return nil
}
