package artifact

// ConsoleStatus is the progress state of one execution result.
type ConsoleStatus string

const (
	ConsoleInProgress ConsoleStatus = "in_progress"
	ConsoleCompleted  ConsoleStatus = "completed"
	ConsoleFailed     ConsoleStatus = "failed"
)

// IsValid reports whether s is a known console status.
func (s ConsoleStatus) IsValid() bool {
	return s == ConsoleInProgress || s == ConsoleCompleted || s == ConsoleFailed
}

// IsTerminal reports whether s is a final status.
func (s ConsoleStatus) IsTerminal() bool {
	return s == ConsoleCompleted || s == ConsoleFailed
}

// ConsoleOutput is one keyed execution-result record delivered by the tool
// runner. ID is caller-assigned and unique for the aggregator's lifetime.
// Content is either plain output or a structured error payload; when the
// runner reports a failure, Error carries the structured detail.
type ConsoleOutput struct {
	ID      string                 `json:"id"`
	Content string                 `json:"content"`
	Status  ConsoleStatus          `json:"status"`
	Error   map[string]interface{} `json:"error,omitempty"`
}
