package settings

// Engine holds the tunable parameters of the artifact streaming engine.
// Values ship in the embedded engine.yaml so behavior like the visibility
// threshold is configuration, not a constant buried in the reducer path.
type Engine struct {
	Visibility VisibilitySettings `yaml:"visibility"`
	Stream     StreamSettings     `yaml:"stream"`
	Sessions   SessionSettings    `yaml:"sessions"`
}

// VisibilitySettings gates when a streaming draft surfaces in the UI.
type VisibilitySettings struct {
	// ContentThreshold is the content length above which a draft becomes
	// visible. Mirrors "don't show an empty/near-empty panel".
	ContentThreshold int `yaml:"content_threshold"`
	// ImmediateKinds surface on their first content delta regardless of
	// length (code panels show up right away).
	ImmediateKinds []string `yaml:"immediate_kinds"`
}

// StreamSettings tunes SSE delivery.
type StreamSettings struct {
	// KeepaliveSeconds is how often SSE keepalive comments are written.
	KeepaliveSeconds int `yaml:"keepalive_seconds"`
	// ClientBuffer is the per-client event channel capacity. A full client
	// is skipped; it catches up from the draft snapshot on reconnect.
	ClientBuffer int `yaml:"client_buffer"`
}

// SessionSettings tunes registry cleanup of terminal sessions.
type SessionSettings struct {
	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds"`
	RetentionMinutes       int `yaml:"retention_minutes"`
}
