package sse

import (
	"fmt"
	"net/http"
)

// KeepAliveWriter writes SSE keepalive comments on a streaming response.
// Callers must serialize WriteKeepAlive with their own event writes; the
// underlying http.ResponseWriter is not safe for concurrent use.
type KeepAliveWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewKeepAliveWriter wraps an established SSE response.
func NewKeepAliveWriter(w http.ResponseWriter, flusher http.Flusher) *KeepAliveWriter {
	return &KeepAliveWriter{w: w, flusher: flusher}
}

// WriteKeepAlive writes one comment line and flushes. Comment lines start
// with a colon and are ignored by EventSource clients. Returns an error
// once the connection is gone so the caller can end its stream loop.
func (k *KeepAliveWriter) WriteKeepAlive() error {
	if _, err := fmt.Fprint(k.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	k.flusher.Flush()

	// A zero-byte write surfaces the close error on an already-dropped
	// connection, which a buffered comment write can miss.
	if _, err := k.w.Write(nil); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}
	return nil
}
