package artifact

// Kind identifies the content type of a document.
type Kind string

const (
	KindText Kind = "text"
	KindCode Kind = "code"
)

// IsValid reports whether k is one of the supported document kinds.
func (k Kind) IsValid() bool {
	return k == KindText || k == KindCode
}

// Status is the lifecycle phase of a draft.
type Status string

const (
	// StatusIdle means no stream is currently mutating the draft.
	StatusIdle Status = "idle"
	// StatusStreaming means deltas are being applied; set by the first
	// content-bearing delta and cleared by the finish delta.
	StatusStreaming Status = "streaming"
)

// Draft is the live, in-progress document state for one streaming session.
//
// Exactly one Draft exists per open session and it is owned by the session
// coordinator; everything outside the coordinator receives by-value
// snapshots, never a shared pointer.
type Draft struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Kind       Kind   `json:"kind"`
	Content    string `json:"content"`
	Status     Status `json:"status"`
	IsVisible  bool   `json:"is_visible"`
}

// NewDraft returns the synthesized initial draft used when a stream's first
// delta arrives before any id delta: empty identity, text kind, not visible.
func NewDraft() Draft {
	return Draft{
		Kind:   KindText,
		Status: StatusIdle,
	}
}
