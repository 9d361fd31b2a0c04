package artifact

import (
	"quill/internal/domain/models/artifact"

	"quill/internal/settings"
)

// Gate derives a draft's user-visibility after each reduce.
//
// Visibility is monotonic within a streaming session: once a draft has been
// shown it is never hidden again. An invisible draft surfaces when its
// content passes the configured length threshold, or immediately when its
// kind is configured to surface on first content (code panels) and a code
// content delta has been observed.
type Gate struct {
	threshold int
	immediate map[artifact.Kind]bool
}

// NewGate builds a gate from the engine's visibility settings.
func NewGate(vs settings.VisibilitySettings) Gate {
	immediate := make(map[artifact.Kind]bool, len(vs.ImmediateKinds))
	for _, k := range vs.ImmediateKinds {
		immediate[artifact.Kind(k)] = true
	}

	return Gate{
		threshold: vs.ContentThreshold,
		immediate: immediate,
	}
}

// Threshold returns the configured content length threshold.
func (g Gate) Threshold() int {
	return g.threshold
}

// Apply recomputes visibility for the draft. sawCodeDelta is stream-scoped
// state tracked by the coordinator: whether any code-delta has arrived in
// this session.
func (g Gate) Apply(d artifact.Draft, sawCodeDelta bool) artifact.Draft {
	if d.IsVisible {
		return d
	}

	if len(d.Content) > g.threshold {
		d.IsVisible = true
		return d
	}

	if g.immediate[d.Kind] && sawCodeDelta {
		d.IsVisible = true
	}

	return d
}
