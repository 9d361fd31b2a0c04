package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxTitleLength = 255

	// MaxContentLength is the maximum length for version content on the
	// explicit-save path. Streamed drafts are not bounded here; the cap
	// only guards the HTTP surface against runaway payloads.
	MaxContentLength = 1 << 20

	// MaxConsoleOutputLength is the maximum length for a single console
	// output's content. Tool runners are expected to truncate before
	// posting; beyond this the payload is rejected.
	MaxConsoleOutputLength = 64 << 10
)
