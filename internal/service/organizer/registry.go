package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"dossier/internal/domain/repositories"
	"dossier/internal/notify"
	"dossier/internal/qc/stream"
	"dossier/internal/taxonomy"
)

// Registry tracks the live organizer session per (user, submission)
// view. A session is created on mount, reused while the view stays
// open, and torn down with its status subscription on dismissal. Trees
// are never shared across sessions: each view owns its own.
type Registry struct {
	taxonomy    *taxonomy.Provider
	submissions repositories.SubmissionRepository
	documents   repositories.DocumentRepository
	orders      repositories.OrderRepository
	pipeline    PipelineClient
	redisClient *redis.Client
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry(
	taxonomyProvider *taxonomy.Provider,
	submissions repositories.SubmissionRepository,
	documents repositories.DocumentRepository,
	orders repositories.OrderRepository,
	pipeline PipelineClient,
	redisClient *redis.Client,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		taxonomy:    taxonomyProvider,
		submissions: submissions,
		documents:   documents,
		orders:      orders,
		pipeline:    pipeline,
		redisClient: redisClient,
		logger:      logger,
		sessions:    make(map[string]*Session),
	}
}

func sessionKey(userID, submissionID string) string {
	return userID + "/" + submissionID
}

// Open returns the live session for the view, constructing it on first
// mount: region resolved through the submission record, folders from
// the taxonomy, documents from the document source, and a fresh status
// subscription bound to the session.
func (r *Registry) Open(ctx context.Context, userID, submissionID string) (*Session, error) {
	key := sessionKey(userID, submissionID)

	r.mu.Lock()
	if session, ok := r.sessions[key]; ok {
		r.mu.Unlock()
		return session, nil
	}
	r.mu.Unlock()

	sub, err := r.submissions.GetByID(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	modules, err := r.taxonomy.Modules(sub.Region)
	if err != nil {
		return nil, fmt.Errorf("resolve taxonomy: %w", err)
	}
	docs, err := r.documents.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	feed := notify.NewFeed(r.logger)
	session, err := NewSession(submissionID, sub.Region, modules, docs, r.pipeline, r.orders, feed, r.logger)
	if err != nil {
		return nil, err
	}

	subscriber := stream.NewSubscriber(
		r.redisClient,
		stream.ChannelFor(submissionID),
		session.ApplyStatus,
		feed,
		r.logger,
	)
	subscriber.Start()
	session.AttachCloser(subscriber.Close)

	r.mu.Lock()
	if existing, ok := r.sessions[key]; ok {
		// Lost the construction race; keep the first session.
		r.mu.Unlock()
		session.Close()
		return existing, nil
	}
	r.sessions[key] = session
	r.mu.Unlock()

	return session, nil
}

// Get returns the live session if one exists.
func (r *Registry) Get(userID, submissionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionKey(userID, submissionID)]
	return session, ok
}

// Close dismisses the view's session, if any. The next Open constructs
// fresh state; nothing carries over beyond what was persisted.
func (r *Registry) Close(userID, submissionID string) {
	key := sessionKey(userID, submissionID)
	r.mu.Lock()
	session, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()
	if ok {
		session.Close()
	}
}

// CloseAll tears every session down; used on server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for key, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, key)
	}
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
