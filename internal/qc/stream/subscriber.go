// Package stream maintains the live QC status subscription for one
// organizer session. Verdicts from the pipeline arrive as pub/sub
// messages; the subscriber decodes them defensively and hands them to
// the session, reconnecting transparently when the feed drops.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dossier/internal/domain/models/organizer"
	"dossier/internal/notify"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// DefaultWarnAfter is how long the feed may stay down before the
	// user sees a non-fatal warning. Shorter outages are silent: the
	// tree keeps its last-known statuses and catches up on reconnect.
	DefaultWarnAfter = 30 * time.Second
)

// statusMessage is the wire payload of one status event.
type statusMessage struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ApplyFunc receives each decoded status fact in arrival order.
type ApplyFunc func(documentID string, status organizer.QCStatus)

// Subscriber is one persistent status subscription. It is created per
// session, torn down deterministically with the session, and carries no
// state across instances beyond what is already in the tree.
type Subscriber struct {
	client    *redis.Client
	channel   string
	apply     ApplyFunc
	notifier  notify.Notifier
	logger    *slog.Logger
	warnAfter time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// ChannelFor returns the pub/sub channel carrying status events for a
// submission.
func ChannelFor(submissionID string) string {
	return fmt.Sprintf("qc:status:%s", submissionID)
}

// NewSubscriber creates a subscriber; call Start to begin receiving.
func NewSubscriber(
	client *redis.Client,
	channel string,
	apply ApplyFunc,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Subscriber {
	return &Subscriber{
		client:    client,
		channel:   channel,
		apply:     apply,
		notifier:  notifier,
		logger:    logger,
		warnAfter: DefaultWarnAfter,
		done:      make(chan struct{}),
	}
}

// Start launches the receive loop in its own goroutine.
func (s *Subscriber) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Close tears the subscription down and waits for the loop to exit.
// Safe to call more than once, and before Start.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		if s.cancel == nil {
			// Start was never called; there is no loop to wait for.
			close(s.done)
			return
		}
		s.cancel()
		<-s.done
	})
}

// run subscribes, drains messages, and reconnects with exponential
// backoff on failure. Reconnects are silent until the outage exceeds
// warnAfter, at which point one dismissible warning is emitted.
func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)

	backoff := initialBackoff
	var downSince time.Time
	warned := false

	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := s.client.Subscribe(ctx, s.channel)

		// A blocking receive on an idle subscription does not observe
		// context cancellation; closing the PubSub is what aborts it.
		watchCtx, stopWatch := context.WithCancel(ctx)
		go func() {
			<-watchCtx.Done()
			_ = pubsub.Close()
		}()

		connected, err := s.receive(ctx, pubsub)
		stopWatch()

		if ctx.Err() != nil {
			return
		}

		if connected {
			// The subscription was established before it broke, so the
			// outage tracking starts over from here.
			downSince = time.Time{}
			warned = false
			backoff = initialBackoff
		}
		if downSince.IsZero() {
			downSince = time.Now()
		}
		s.logger.Warn("status feed disconnected, will reconnect",
			"channel", s.channel,
			"error", err,
			"backoff", backoff.String(),
		)

		if !warned && time.Since(downSince) >= s.warnAfter {
			warned = true
			s.notifier.Notify(notify.New(notify.LevelWarning,
				"Live QC status updates are temporarily unavailable. Showing last-known statuses."))
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// receive drains messages from one subscription until it fails or the
// context ends. The returned bool reports whether the subscription was
// confirmed before the failure.
func (s *Subscriber) receive(ctx context.Context, pubsub *redis.PubSub) (bool, error) {
	// Confirm the subscription before consuming.
	if _, err := pubsub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", s.channel, err)
	}

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return true, fmt.Errorf("receive: %w", err)
		}
		s.handle(msg.Payload)
	}
}

// handle decodes one payload and applies it. A malformed message is
// logged and dropped; one bad message must never disturb the session.
func (s *Subscriber) handle(payload string) {
	var msg statusMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		s.logger.Warn("dropping malformed status message",
			"channel", s.channel,
			"error", err,
		)
		return
	}
	if msg.ID == "" || msg.Status == "" {
		s.logger.Warn("dropping status message with missing fields",
			"channel", s.channel,
			"payload", payload,
		)
		return
	}
	s.apply(msg.ID, organizer.ParseQCStatus(msg.Status))
}
