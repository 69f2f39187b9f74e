package sse

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec, rec)

	if err := w.WriteEvent("status_changed", []byte(`{"id":"doc-1","status":"passed"}`)); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	got := rec.Body.String()
	want := "event: status_changed\ndata: {\"id\":\"doc-1\",\"status\":\"passed\"}\n\n"
	if got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
	if !rec.Flushed {
		t.Error("event write must flush")
	}
}

func TestWriteKeepAlive(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec, rec)

	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive() error = %v", err)
	}

	if !strings.HasPrefix(rec.Body.String(), ": ") {
		t.Errorf("keep-alive should be an SSE comment, got %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("keep-alive must flush")
	}
}
