package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one message pushed to connected organizer clients over the
// session event feed: notifications, status changes, advisory results.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Event types carried by the feed.
const (
	EventNotification  = "notification"
	EventStatusChanged = "status_changed"
	EventAdvisory      = "advisory"
	EventTreeChanged   = "tree_changed"
)

// NewEvent builds a feed event with a fresh id.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// Encode renders the event payload as JSON for the SSE data line.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Feed fans events out to connected clients. Slow clients are skipped
// rather than blocking the publisher: the feed is a live convenience
// channel and every fact it carries is recoverable by refetching the
// tree, so dropping a frame for a stalled consumer is acceptable.
type Feed struct {
	mu      sync.RWMutex
	clients map[string]chan Event
	logger  *slog.Logger
}

// NewFeed creates an empty feed.
func NewFeed(logger *slog.Logger) *Feed {
	return &Feed{
		clients: make(map[string]chan Event),
		logger:  logger,
	}
}

// AddClient registers a consumer and returns its event channel.
func (f *Feed) AddClient(clientID string) <-chan Event {
	ch := make(chan Event, 32)
	f.mu.Lock()
	f.clients[clientID] = ch
	f.mu.Unlock()
	return ch
}

// RemoveClient unregisters a consumer and closes its channel.
func (f *Feed) RemoveClient(clientID string) {
	f.mu.Lock()
	if ch, ok := f.clients[clientID]; ok {
		delete(f.clients, clientID)
		close(ch)
	}
	f.mu.Unlock()
}

// Publish delivers an event to every connected client without blocking.
func (f *Feed) Publish(event Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for clientID, ch := range f.clients {
		select {
		case ch <- event:
		default:
			f.logger.Warn("event feed client lagging, dropping event",
				"client_id", clientID,
				"event_type", event.Type,
			)
		}
	}
}

// Notify implements the Notifier port by publishing a notification event.
func (f *Feed) Notify(n Notification) {
	f.Publish(NewEvent(EventNotification, n))
}
