// Package sse holds the tunables and helpers shared by the SSE endpoints.
package sse

import "time"

// Config tunes SSE connection behavior.
type Config struct {
	// KeepAliveInterval is how often comment lines are written on an idle
	// stream so intermediate proxies do not drop the connection.
	KeepAliveInterval time.Duration
}

// DefaultConfig matches the engine settings default of 10 seconds.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}
