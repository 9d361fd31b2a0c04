package artifact

import (
	"encoding/json"
	"fmt"
)

// SSE event type constants for document streaming
const (
	SSEEventDraftUpdate  = "draft_update"  // Full draft snapshot after an applied delta
	SSEEventStreamFinish = "stream_finish" // Stream finished; a version was persisted
	SSEEventStreamError  = "stream_error"  // Stream encountered an error
)

// DraftUpdateEvent carries the by-value draft snapshot published to
// observers after every applied delta. Seq is the stream position of the
// delta that produced it.
type DraftUpdateEvent struct {
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
	Draft     Draft  `json:"draft"`
}

// StreamFinishEvent signals that the stream completed and the draft was
// persisted as an immutable version.
type StreamFinishEvent struct {
	SessionID       string `json:"session_id"`
	DocumentID      string `json:"document_id"`
	VersionCreated  string `json:"version_created_at"` // RFC 3339
	DeltasProcessed int    `json:"deltas_processed"`
}

// StreamErrorEvent signals that the stream ended with an error. IsCancelled
// distinguishes user-initiated cancellation so the UI can skip the error toast.
type StreamErrorEvent struct {
	SessionID   string `json:"session_id"`
	Error       string `json:"error"`
	IsCancelled bool   `json:"is_cancelled,omitempty"`
}

// FormatSSE formats an SSE event for transmission:
//
//	event: event_name
//	data: {"field": "value"}
//	\n
func FormatSSE(eventType string, data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal SSE event data: %w", err)
	}

	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, string(jsonData)), nil
}

// NewDraftUpdateEvent creates a draft_update SSE event
func NewDraftUpdateEvent(sessionID string, seq int, draft Draft) (string, error) {
	return FormatSSE(SSEEventDraftUpdate, DraftUpdateEvent{
		SessionID: sessionID,
		Seq:       seq,
		Draft:     draft,
	})
}

// NewStreamFinishEvent creates a stream_finish SSE event
func NewStreamFinishEvent(sessionID, documentID, versionCreatedAt string, deltas int) (string, error) {
	return FormatSSE(SSEEventStreamFinish, StreamFinishEvent{
		SessionID:       sessionID,
		DocumentID:      documentID,
		VersionCreated:  versionCreatedAt,
		DeltasProcessed: deltas,
	})
}

// NewStreamErrorEvent creates a stream_error SSE event
func NewStreamErrorEvent(sessionID, errorMsg string, cancelled bool) (string, error) {
	return FormatSSE(SSEEventStreamError, StreamErrorEvent{
		SessionID:   sessionID,
		Error:       errorMsg,
		IsCancelled: cancelled,
	})
}
