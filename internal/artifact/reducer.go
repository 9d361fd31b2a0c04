package artifact

import (
	"quill/internal/domain/models/artifact"
)

// Reduce folds one delta into the next draft state.
//
// Pure and total: no I/O, handles every delta kind, never panics. prev may
// be nil (no draft yet); a content-affecting delta then synthesizes a fresh
// draft before applying its effect. The returned draft is always a value,
// so callers can publish it without sharing mutable state.
//
// Content deltas carry the full current content, not an increment. Latest
// write wins; that policy lives here and only here, so swapping it for
// append semantics would not touch any caller.
func Reduce(prev *artifact.Draft, d artifact.Delta) artifact.Draft {
	var next artifact.Draft
	if prev == nil {
		next = artifact.NewDraft()
	} else {
		next = *prev
	}

	switch d.Type {
	case artifact.DeltaID:
		next.DocumentID = d.Content
		next.Status = artifact.StatusStreaming

	case artifact.DeltaTitle:
		next.Title = d.Content
		next.Status = artifact.StatusStreaming

	case artifact.DeltaKind:
		if k := artifact.Kind(d.Content); k.IsValid() {
			next.Kind = k
		}
		next.Status = artifact.StatusStreaming

	case artifact.DeltaTextContent:
		if next.Kind == artifact.KindText {
			next.Content = d.Content
		}
		next.Status = artifact.StatusStreaming

	case artifact.DeltaCodeContent:
		if next.Kind == artifact.KindCode {
			next.Content = d.Content
		}
		next.Status = artifact.StatusStreaming

	case artifact.DeltaClear:
		next.Content = ""
		next.Status = artifact.StatusStreaming

	case artifact.DeltaFinish:
		next.Status = artifact.StatusIdle

	case artifact.DeltaUserMessageID:
		// Side channel: routed to the session's message register, never
		// through the draft.
	}

	return next
}
