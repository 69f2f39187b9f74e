// Package sse implements the Server-Sent Events plumbing for the
// organizer event feed: a serialized event writer and a ticker-based
// keep-alive strategy.
package sse

import (
	"fmt"
	"net/http"
	"sync"
)

// Writer serializes SSE frames onto one response. Events and keep-alive
// pings come from different goroutines, so writes are mutex-guarded.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter creates an SSE writer over a flushable response.
func NewWriter(w http.ResponseWriter, flusher http.Flusher) *Writer {
	return &Writer{w: w, flusher: flusher}
}

// WriteEvent writes one named SSE event with a JSON data line.
func (s *Writer) WriteEvent(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment line and flushes. SSE clients
// ignore comment lines; a write error means the connection is gone.
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()

	// Zero-byte write probes for connections closed since the flush.
	if _, err := s.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}
	return nil
}
