package artifact

import (
	"strings"
	"time"
)

// Suggestion is an editing suggestion anchored to a span of a document's
// content. The engine stores and positions suggestions but never flips
// IsResolved - resolution belongs to the editing UI.
type Suggestion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	OriginalText  string    `json:"original_text"`
	SuggestedText string    `json:"suggested_text"`
	Description   string    `json:"description"`
	IsResolved    bool      `json:"is_resolved"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnchorIn resolves the suggestion's position in the given content.
// Anchors are recomputed lazily against whatever the current content is,
// which keeps them stable under the stream's full-content replacement
// semantics. Returns -1 when the original span no longer exists (stale).
func (s Suggestion) AnchorIn(content string) int {
	if s.OriginalText == "" {
		return -1
	}
	return strings.Index(content, s.OriginalText)
}
