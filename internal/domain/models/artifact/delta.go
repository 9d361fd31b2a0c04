package artifact

import (
	"encoding/json"
	"fmt"

	"quill/internal/domain"
)

// DeltaType discriminates the closed set of stream delta kinds.
type DeltaType string

const (
	DeltaID            DeltaType = "id"              // assigns the document identity
	DeltaTitle         DeltaType = "title"           // sets the document title
	DeltaKind          DeltaType = "kind"            // sets the document kind
	DeltaTextContent   DeltaType = "text-delta"      // full text content snapshot
	DeltaCodeContent   DeltaType = "code-delta"      // full code content snapshot
	DeltaClear         DeltaType = "clear"           // resets content to empty
	DeltaFinish        DeltaType = "finish"          // terminates the stream
	DeltaUserMessageID DeltaType = "user-message-id" // side channel, never touches the draft
)

// deltaTypes is the closed set accepted off the wire. Unknown tags are
// rejected with a MalformedDeltaError rather than silently ignored.
var deltaTypes = map[DeltaType]bool{
	DeltaID:            true,
	DeltaTitle:         true,
	DeltaKind:          true,
	DeltaTextContent:   true,
	DeltaCodeContent:   true,
	DeltaClear:         true,
	DeltaFinish:        true,
	DeltaUserMessageID: true,
}

// Delta is one incremental typed update token in the generation stream.
//
// Wire shape: { "type": ..., "content": ..., "seq": ... }, order-significant,
// terminated by a finish delta. Seq is the producer's stream position and is
// what makes re-delivery detectable (an already-processed position is a
// no-op at the coordinator).
type Delta struct {
	Type    DeltaType `json:"type"`
	Content string    `json:"content"`
	Seq     int       `json:"seq"`
}

// IsValid reports whether t is a member of the closed delta kind set.
func (t DeltaType) IsValid() bool {
	return deltaTypes[t]
}

// MutatesDraft reports whether this delta kind touches the draft at all.
// user-message-id is routed to the session's message register instead.
func (t DeltaType) MutatesDraft() bool {
	return t != DeltaUserMessageID
}

// Validate checks the delta has the required fields for its kind.
// Returns a *domain.MalformedDeltaError on failure so callers can drop the
// delta with a diagnostic and keep the session alive.
func (d Delta) Validate() error {
	if !d.Type.IsValid() {
		return &domain.MalformedDeltaError{Kind: string(d.Type), Message: "unknown delta kind"}
	}

	switch d.Type {
	case DeltaID:
		if d.Content == "" {
			return &domain.MalformedDeltaError{Kind: string(d.Type), Message: "missing document id"}
		}
	case DeltaKind:
		if !Kind(d.Content).IsValid() {
			return &domain.MalformedDeltaError{
				Kind:    string(d.Type),
				Message: fmt.Sprintf("unsupported document kind %q", d.Content),
			}
		}
	case DeltaUserMessageID:
		if d.Content == "" {
			return &domain.MalformedDeltaError{Kind: string(d.Type), Message: "missing message id"}
		}
	}

	return nil
}

// DecodeDelta parses one wire record into a Delta, enforcing the closed
// kind set and per-kind required fields.
func DecodeDelta(data []byte) (Delta, error) {
	var d Delta
	if err := json.Unmarshal(data, &d); err != nil {
		return Delta{}, &domain.MalformedDeltaError{Kind: "", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := d.Validate(); err != nil {
		return Delta{}, err
	}
	return d, nil
}
