package artifact

import (
	"sync"

	"quill/internal/domain/models/artifact"
)

// Console aggregates execution-result records delivered by the tool runner.
//
// Outputs keep the insertion order of their first-seen id: upserting a known
// id replaces the record in place without moving it, upserting a new id
// appends. The collection is only ever emptied by an explicit Clear.
//
// Revision is the observable consumers watch for auto-scroll: it bumps
// whenever the collection identity changes (length, or the id of the last
// element), not on in-place status updates of earlier entries.
//
// All methods serialize on an internal mutex, so the tool runner and the
// HTTP surface may call concurrently; no two upserts are ever applied at
// the same time.
type Console struct {
	mu       sync.Mutex
	outputs  []artifact.ConsoleOutput
	index    map[string]int // id -> position in outputs
	revision uint64
}

// NewConsole creates an empty console aggregator.
func NewConsole() *Console {
	return &Console{
		index: make(map[string]int),
	}
}

// Upsert applies one execution-result record. This is the only mutation
// entry point besides Clear.
func (c *Console) Upsert(out artifact.ConsoleOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[out.ID]; ok {
		// In-place replace keeps the position and the revision; only
		// membership changes bump the revision.
		c.outputs[pos] = out
		return
	}

	c.outputs = append(c.outputs, out)
	c.index[out.ID] = len(c.outputs) - 1
	c.revision++
}

// Clear empties the collection. Explicit user action only; nothing in the
// engine clears the console implicitly.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.outputs) == 0 {
		return
	}

	c.outputs = nil
	c.index = make(map[string]int)
	c.revision++
}

// Outputs returns a copy of the collection in first-seen insertion order,
// newest last.
func (c *Console) Outputs() []artifact.ConsoleOutput {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]artifact.ConsoleOutput, len(c.outputs))
	copy(out, c.outputs)
	return out
}

// Revision returns the monotonically increasing collection identity
// counter.
func (c *Console) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.revision
}

// Len returns the number of outputs.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.outputs)
}
