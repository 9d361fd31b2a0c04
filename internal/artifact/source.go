package artifact

import (
	"context"

	"quill/internal/domain/models/artifact"
)

// DeltaSource produces the ordered delta stream for one document session.
//
// The generative backend itself is a collaborator behind this interface;
// the engine only depends on the wire contract: an append-only, strictly
// ordered sequence of typed deltas terminated by a finish delta. Producers
// number deltas from 1 via Delta.Seq so re-delivery is detectable.
type DeltaSource interface {
	// Stream starts producing deltas. The returned channel is closed by the
	// producer after the finish delta (or on error/cancellation).
	Stream(ctx context.Context) (<-chan artifact.Delta, error)
}

// VersionAppender persists immutable versions. Implemented by the version
// store service; the session coordinator only needs the append operation.
type VersionAppender interface {
	Append(ctx context.Context, v *artifact.Version) error
}
