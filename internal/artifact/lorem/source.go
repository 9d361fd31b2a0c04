// Package lorem provides a mock delta source that streams generated
// documents delta-by-delta. Used for development and testing without a
// generative backend.
package lorem

import (
	"context"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"

	"quill/internal/domain/models/artifact"
)

// Source streams one generated document as a well-formed delta sequence:
// id, title, kind, a run of full-content snapshots growing word by word,
// then finish. Pace varies with the model suffix the way the real
// providers do (lorem-slow, lorem-fast, lorem-medium).
type Source struct {
	generator  *loremgen.Lorem
	model      string
	documentID string
	kind       artifact.Kind
	paragraphs int
}

// NewSource creates a lorem delta source for a fresh document.
func NewSource(model string, kind artifact.Kind) *Source {
	if !kind.IsValid() {
		kind = artifact.KindText
	}

	return &Source{
		generator:  loremgen.New(),
		model:      model,
		documentID: uuid.New().String(),
		kind:       kind,
		paragraphs: 3,
	}
}

// DocumentID returns the id the stream will assign.
func (s *Source) DocumentID() string {
	return s.documentID
}

// streamDelay returns the delay between content snapshots based on the
// model name.
func (s *Source) streamDelay() time.Duration {
	if strings.Contains(s.model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(s.model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// Stream implements artifact.DeltaSource.
func (s *Source) Stream(ctx context.Context) (<-chan artifact.Delta, error) {
	deltas := make(chan artifact.Delta, 10)

	go func() {
		defer close(deltas)

		seq := 0
		send := func(t artifact.DeltaType, content string) bool {
			seq++
			select {
			case deltas <- artifact.Delta{Type: t, Content: content, Seq: seq}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		contentKind := artifact.DeltaTextContent
		if s.kind == artifact.KindCode {
			contentKind = artifact.DeltaCodeContent
		}

		if !send(artifact.DeltaID, s.documentID) {
			return
		}
		if !send(artifact.DeltaTitle, s.generator.Sentence(3, 6)) {
			return
		}
		if !send(artifact.DeltaKind, string(s.kind)) {
			return
		}

		// Grow the content word by word, re-sending the full content each
		// time: the wire contract is snapshot semantics, not appends.
		var words []string
		for i := 0; i < s.paragraphs; i++ {
			words = append(words, strings.Fields(s.generator.Paragraph(3, 5))...)
		}

		delay := s.streamDelay()
		var content strings.Builder
		for _, word := range words {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if content.Len() > 0 {
				content.WriteString(" ")
			}
			content.WriteString(word)

			if !send(contentKind, content.String()) {
				return
			}

			time.Sleep(delay)
		}

		send(artifact.DeltaFinish, "")
	}()

	return deltas, nil
}
