// Package organizer holds the per-session submission tree state: one
// actor goroutine per open organizer view, owning the tree snapshot,
// the selection set and the current advisory panel. Every mutation runs
// inside the session loop, so the in-memory structures need no locking;
// network calls run outside the loop and post their results back in.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dossier/internal/config"
	"dossier/internal/domain"
	models "dossier/internal/domain/models/organizer"
	"dossier/internal/notify"
)

const (
	// advisoryRequestTimeout bounds the guidance call for one move.
	advisoryRequestTimeout = 8 * time.Second
	// advisoryDisplayTTL is how long a resolved advisory stays
	// presentable before it self-dismisses.
	advisoryDisplayTTL = 10 * time.Second
	// bulkRequestTimeout bounds one batch re-evaluation request.
	bulkRequestTimeout = 15 * time.Second

	mailboxSize = 64
)

// ErrSessionClosed is returned for operations on a dismissed session.
var ErrSessionClosed = errors.New("organizer session closed")

// PipelineClient is the slice of the QC pipeline the session drives:
// batch re-evaluation and placement guidance.
type PipelineClient interface {
	BulkApprove(ctx context.Context, ids []string) error
	Advise(ctx context.Context, req models.AdvisoryRequest) (*models.Advisory, error)
}

// OrderStore persists a flattened tree ordering.
type OrderStore interface {
	SaveOrder(ctx context.Context, submissionID string, entries []models.OrderEntry) error
}

// State is the full organizer view for one session, returned on mount
// and after mutations.
type State struct {
	Tree      *models.TreeView `json:"tree"`
	Selection []string         `json:"selection"`
	Dirty     bool             `json:"dirty"`
	Advisory  *models.Advisory `json:"advisory,omitempty"`
}

// advisoryPanel is the one live advisory context. gen ties it to the
// move that requested it; a later move supersedes it.
type advisoryPanel struct {
	advisory  models.Advisory
	gen       uint64
	expiresAt time.Time
}

// Session is the organizer actor for one user's view of one submission.
type Session struct {
	ID           string
	SubmissionID string

	region   string
	pipeline PipelineClient
	orders   OrderStore
	feed     *notify.Feed
	notifier notify.Notifier
	logger   *slog.Logger

	commands chan func()
	closed   chan struct{}
	closing  sync.Once
	closers  []func()

	// State below is owned by the loop goroutine.
	tree      *models.Tree
	selection map[string]struct{}
	dirty     bool
	moveGen   uint64
	advisory  *advisoryPanel

	now func() time.Time
}

// NewSession constructs the tree for a submission and starts the actor
// loop. The caller owns teardown via Close.
func NewSession(
	submissionID string,
	region string,
	modules []models.ModuleFolder,
	docs []models.DocumentRecord,
	pipeline PipelineClient,
	orders OrderStore,
	feed *notify.Feed,
	logger *slog.Logger,
) (*Session, error) {
	tree, err := models.NewTree(region, modules, docs)
	if err != nil {
		return nil, fmt.Errorf("build submission tree: %w", err)
	}

	s := &Session{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		region:       region,
		pipeline:     pipeline,
		orders:       orders,
		feed:         feed,
		notifier:     feed,
		logger: logger.With(
			"submission_id", submissionID,
			"region", region,
		),
		commands:  make(chan func(), mailboxSize),
		closed:    make(chan struct{}),
		tree:      tree,
		selection: make(map[string]struct{}),
		now:       time.Now,
	}

	go s.loop()

	s.logger.Info("organizer session opened",
		"session_id", s.ID,
		"node_count", tree.Len(),
	)
	return s, nil
}

// Feed exposes the session's event feed for streaming handlers.
func (s *Session) Feed() *notify.Feed { return s.feed }

// AttachCloser registers teardown work (e.g. the status subscription)
// to run when the session closes.
func (s *Session) AttachCloser(fn func()) {
	s.closers = append(s.closers, fn)
}

// Close tears the session down deterministically: the mailbox stops,
// attached resources are released, and nothing carries over to the next
// mount beyond what is persisted.
func (s *Session) Close() {
	s.closing.Do(func() {
		close(s.closed)
		for _, fn := range s.closers {
			fn()
		}
		s.logger.Info("organizer session closed", "session_id", s.ID)
	})
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.commands:
			fn()
		case <-s.closed:
			return
		}
	}
}

// do runs fn inside the loop and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}

	select {
	case s.commands <- wrapped:
	case <-s.closed:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post runs fn inside the loop without waiting; used by asynchronous
// completions that have no caller left to report to.
func (s *Session) post(fn func()) {
	select {
	case s.commands <- fn:
	case <-s.closed:
	}
}

// State returns the current tree view, selection, dirty flag and live
// advisory in one consistent snapshot.
func (s *Session) State(ctx context.Context) (*State, error) {
	var state *State
	err := s.do(ctx, func() {
		state = &State{
			Tree:      models.BuildView(s.tree),
			Selection: s.selectionIDs(),
			Dirty:     s.dirty,
			Advisory:  s.liveAdvisory(),
		}
	})
	return state, err
}

// Move validates and applies one reparenting operation. On a move into
// a different folder the order becomes dirty and a guidance request is
// fired without blocking; the move itself is already committed.
func (s *Session) Move(ctx context.Context, req MoveRequest) (*State, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		state   *State
		moveErr error
	)
	err := s.do(ctx, func() {
		node, ok := s.tree.Node(req.NodeID)
		if !ok {
			moveErr = fmt.Errorf("%w: node %q", domain.ErrNotFound, req.NodeID)
			return
		}
		target, ok := s.tree.Node(req.TargetID)
		if !ok {
			moveErr = fmt.Errorf("%w: target %q", domain.ErrNotFound, req.TargetID)
			return
		}
		if !models.CanMove(node, target) {
			moveErr = fmt.Errorf("%w: cannot drop %s %q onto %s %q",
				models.ErrInvalidMove, node.Kind, node.ID, target.Kind, target.ID)
			return
		}

		next, err := s.tree.ApplyMove(req.NodeID, req.TargetID)
		if err != nil {
			moveErr = err
			return
		}
		crossed := node.ParentID != req.TargetID
		s.tree = next

		if crossed {
			s.dirty = true
			s.moveGen++
			s.advisory = nil // a new move replaces whatever panel is shown

			advReq := models.AdvisoryRequest{
				DocumentID:      node.ID,
				ModuleID:        req.TargetID,
				DocumentType:    node.DocumentType,
				DocumentTitle:   node.Label,
				ExistingModules: next.PopulatedModules(),
				Region:          s.region,
			}
			go s.requestAdvisory(s.moveGen, advReq)

			s.feed.Publish(notify.NewEvent(notify.EventTreeChanged, models.BuildView(next)))
			s.logger.Debug("document moved",
				"node_id", node.ID,
				"from", node.ParentID,
				"to", req.TargetID,
			)
		}

		state = &State{
			Tree:      models.BuildView(s.tree),
			Selection: s.selectionIDs(),
			Dirty:     s.dirty,
			Advisory:  s.liveAdvisory(),
		}
	})
	if err != nil {
		return nil, err
	}
	return state, moveErr
}

// requestAdvisory runs outside the loop: one time-boxed guidance call
// for the move identified by gen. Failures are swallowed; a response
// for a superseded move is discarded at presentation time.
func (s *Session) requestAdvisory(gen uint64, req models.AdvisoryRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), advisoryRequestTimeout)
	defer cancel()

	advisory, err := s.pipeline.Advise(ctx, req)
	if err != nil {
		s.logger.Debug("placement guidance unavailable",
			"document_id", req.DocumentID,
			"error", err,
		)
		return
	}

	s.post(func() {
		if gen != s.moveGen {
			s.logger.Debug("discarding superseded advisory",
				"document_id", advisory.DocumentID,
			)
			return
		}
		s.advisory = &advisoryPanel{
			advisory:  *advisory,
			gen:       gen,
			expiresAt: s.now().Add(advisoryDisplayTTL),
		}
		s.feed.Publish(notify.NewEvent(notify.EventAdvisory, advisory))
	})
}

// Advisory returns the live advisory panel, or nil once it has expired
// or been superseded by a later move.
func (s *Session) Advisory(ctx context.Context) (*models.Advisory, error) {
	var advisory *models.Advisory
	err := s.do(ctx, func() {
		advisory = s.liveAdvisory()
	})
	return advisory, err
}

func (s *Session) liveAdvisory() *models.Advisory {
	if s.advisory == nil || s.advisory.gen != s.moveGen || s.now().After(s.advisory.expiresAt) {
		return nil
	}
	out := s.advisory.advisory
	return &out
}

// ToggleSelect adds or removes a document from the selection set.
// Folders and the root are not selectable. Selection never touches the
// tree shape or any QC status.
func (s *Session) ToggleSelect(ctx context.Context, req SelectRequest) (bool, []string, error) {
	if err := req.Validate(); err != nil {
		return false, nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		selected  bool
		selection []string
		opErr     error
	)
	err := s.do(ctx, func() {
		node, ok := s.tree.Node(req.NodeID)
		if !ok {
			opErr = fmt.Errorf("%w: node %q", domain.ErrNotFound, req.NodeID)
			return
		}
		if node.Kind != models.KindDocument {
			opErr = fmt.Errorf("%w: only documents are selectable", domain.ErrValidation)
			return
		}
		if _, on := s.selection[req.NodeID]; on {
			delete(s.selection, req.NodeID)
		} else {
			s.selection[req.NodeID] = struct{}{}
			selected = true
		}
		selection = s.selectionIDs()
	})
	if err != nil {
		return false, nil, err
	}
	return selected, selection, opErr
}

// BulkApprove submits one batch re-evaluation covering the current
// selection and returns the number of documents submitted. The batch
// outcome is reported through notifications: on success the selection
// clears and a transient acknowledgement fires (the verdicts themselves
// arrive later over the status feed); on failure the selection is
// preserved for retry and a blocking error is raised. The session loop
// never waits on the network call.
func (s *Session) BulkApprove(ctx context.Context) (int, error) {
	var (
		ids   []string
		opErr error
	)
	err := s.do(ctx, func() {
		if len(s.selection) == 0 {
			opErr = fmt.Errorf("%w: selection is empty", domain.ErrValidation)
			return
		}
		if len(s.selection) > config.MaxBulkApproveBatch {
			opErr = fmt.Errorf("%w: selection exceeds the %d document batch limit", domain.ErrValidation, config.MaxBulkApproveBatch)
			return
		}
		ids = s.selectionIDs()
	})
	if err != nil {
		return 0, err
	}
	if opErr != nil {
		return 0, opErr
	}

	go func() {
		callCtx, cancel := context.WithTimeout(context.Background(), bulkRequestTimeout)
		defer cancel()

		callErr := s.pipeline.BulkApprove(callCtx, ids)
		s.post(func() {
			if callErr != nil {
				s.logger.Warn("bulk approval failed",
					"count", len(ids),
					"error", callErr,
				)
				s.notifier.Notify(notify.NewBlocking(notify.LevelError,
					fmt.Sprintf("Bulk approval of %d documents failed. Your selection was kept; please retry.", len(ids))))
				return
			}
			for _, id := range ids {
				delete(s.selection, id)
			}
			s.notifier.Notify(notify.New(notify.LevelSuccess,
				fmt.Sprintf("Re-evaluation requested for %d documents. QC results will arrive shortly.", len(ids))))
		})
	}()

	return len(ids), nil
}

// ApplyStatus merges one status fact from the QC feed into the tree.
// Unknown ids are ignored, duplicate deliveries are suppressed, and a
// transition from a non-terminal status to a verdict raises exactly one
// notification naming the document.
func (s *Session) ApplyStatus(documentID string, status models.QCStatus) {
	s.post(func() {
		node, ok := s.tree.Node(documentID)
		if !ok || node.Kind != models.KindDocument {
			s.logger.Debug("status for document outside current view",
				"document_id", documentID,
				"status", status,
			)
			return
		}
		if node.QCStatus == status {
			return
		}

		s.tree = s.tree.UpdateStatus(documentID, status)
		s.feed.Publish(notify.NewEvent(notify.EventStatusChanged, map[string]any{
			"id":     documentID,
			"status": status,
		}))

		if !node.QCStatus.Terminal() && status.Terminal() {
			level := notify.LevelSuccess
			if status == models.StatusFailed {
				level = notify.LevelError
			}
			s.notifier.Notify(notify.New(level,
				fmt.Sprintf("%q %s QC", node.Label, status)))
		}
	})
}

// SaveOrder flattens the current tree ordering and persists it in one
// request. The in-memory tree is never rolled back by a persistence
// failure; only the durability guarantee failed, so the error is
// surfaced as retryable and the dirty flag stays set.
func (s *Session) SaveOrder(ctx context.Context) error {
	var entries []models.OrderEntry
	if err := s.do(ctx, func() {
		entries = s.tree.SnapshotOrder()
	}); err != nil {
		return err
	}

	if err := s.orders.SaveOrder(ctx, s.SubmissionID, entries); err != nil {
		s.logger.Warn("order save failed",
			"entries", len(entries),
			"error", err,
		)
		return fmt.Errorf("%w: saving document order failed: %v", domain.ErrUnavailable, err)
	}

	return s.do(ctx, func() {
		s.dirty = false
	})
}

func (s *Session) selectionIDs() []string {
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
