package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFeedPublish(t *testing.T) {
	feed := NewFeed(testLogger())

	ch1 := feed.AddClient("client-1")
	ch2 := feed.AddClient("client-2")

	feed.Publish(NewEvent(EventTreeChanged, map[string]string{"region": "us"}))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventTreeChanged {
				t.Errorf("event type = %q, want %q", ev.Type, EventTreeChanged)
			}
			if ev.ID == "" {
				t.Error("event has no id")
			}
		default:
			t.Fatal("client did not receive the event")
		}
	}
}

func TestFeedDropsEventsForLaggingClient(t *testing.T) {
	feed := NewFeed(testLogger())
	ch := feed.AddClient("slow")

	// Fill the client buffer and then some; Publish must never block.
	for i := 0; i < 40; i++ {
		feed.Publish(NewEvent(EventNotification, i))
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered events = %d, want full buffer of %d", got, cap(ch))
	}
}

func TestFeedRemoveClient(t *testing.T) {
	feed := NewFeed(testLogger())
	ch := feed.AddClient("client")

	feed.RemoveClient("client")
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after removal")
	}

	// Removing twice is safe.
	feed.RemoveClient("client")

	// Publishing to an empty feed is safe.
	feed.Publish(NewEvent(EventNotification, "hello"))
}

func TestFeedNotify(t *testing.T) {
	feed := NewFeed(testLogger())
	ch := feed.AddClient("client")

	feed.Notify(NewBlocking(LevelError, "bulk approval failed"))

	ev := <-ch
	if ev.Type != EventNotification {
		t.Fatalf("event type = %q, want %q", ev.Type, EventNotification)
	}
	n, ok := ev.Data.(Notification)
	if !ok {
		t.Fatalf("event data = %T, want Notification", ev.Data)
	}
	if n.Level != LevelError || !n.Blocking || n.Dismissible {
		t.Errorf("notification = %+v, want blocking non-dismissible error", n)
	}
}

func TestEventEncode(t *testing.T) {
	ev := NewEvent(EventStatusChanged, map[string]string{"id": "doc-1", "status": "passed"})

	data, err := ev.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded struct {
		ID   string            `json:"id"`
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal encoded event: %v", err)
	}
	if decoded.Type != EventStatusChanged {
		t.Errorf("type = %q, want %q", decoded.Type, EventStatusChanged)
	}
	if decoded.Data["status"] != "passed" {
		t.Errorf("data = %v", decoded.Data)
	}
}
