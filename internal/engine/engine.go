package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dayplan/internal/complete"
	"dayplan/internal/model"
	"dayplan/internal/reminder"
	"dayplan/internal/storage"
)

const eventLogSize = 64

// Event is one line of the session's activity log, shown in the UI and
// useful when a sync pass misbehaves.
type Event struct {
	At      time.Time
	Message string
}

// Session ties one user's stores together for the lifetime of the app: it
// drains the completion outbox on start, then keeps the local reminder set
// reconciled against every document snapshot the store pushes.
type Session struct {
	userID     string
	store      *storage.Store
	reconciler *complete.Reconciler
	syncer     *reminder.Syncer
	prefs      reminder.Preferences
	now        func() time.Time

	mu      sync.Mutex
	events  []Event
	sub     *storage.Subscription
	started bool

	done chan struct{}
}

func NewSession(userID string, store *storage.Store, rec *complete.Reconciler, syncer *reminder.Syncer, prefs reminder.Preferences) *Session {
	return &Session{
		userID:     userID,
		store:      store,
		reconciler: rec,
		syncer:     syncer,
		prefs:      prefs,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Start replays pending completion writes, then attaches the snapshot
// listener that drives reminder sync. It returns after the initial flush
// and subscription are in place; sync passes run on a background goroutine.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("engine: session already started")
	}
	s.started = true
	s.mu.Unlock()

	attempted, err := s.reconciler.Flush(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("flush outbox: %w", err)
	}
	if attempted > 0 {
		s.record(fmt.Sprintf("replayed %d pending completion write(s)", attempted))
	}

	sub, err := s.store.Subscribe(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	go s.run(sub)
	return nil
}

func (s *Session) run(sub *storage.Subscription) {
	defer close(s.done)
	for snap := range sub.C() {
		s.syncOnce(snap)
	}
}

func (s *Session) syncOnce(snap storage.Snapshot) {
	stats, err := s.syncer.Sync(s.userID, snap.Tasks, flattenSubs(snap.SubTasks), s.prefs, s.now())
	if err != nil {
		s.record(fmt.Sprintf("reminder sync failed: %v", err))
		return
	}
	if stats.Scheduled > 0 || stats.Cancelled > 0 || stats.Failed > 0 {
		s.record(fmt.Sprintf("reminders: %d scheduled, %d cancelled, %d failed",
			stats.Scheduled, stats.Cancelled, stats.Failed))
	}
}

// Toggle flips completion for a main task through the reconciler. The
// returned task is the optimistic local state.
func (s *Session) Toggle(ctx context.Context, task model.Task, done bool) (model.Task, error) {
	return s.reconciler.ToggleTask(ctx, s.userID, task, done)
}

// ToggleSub flips completion for a subtask.
func (s *Session) ToggleSub(ctx context.Context, sub model.SubTask, done bool) (model.SubTask, error) {
	return s.reconciler.ToggleSubTask(ctx, sub, done)
}

// Stop detaches the snapshot listener and waits for the in-flight sync
// pass to finish. Safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	if sub == nil {
		return
	}
	sub.Close()
	<-s.done
}

// Events returns a copy of the recent activity log, newest last.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Session) record(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{At: s.now(), Message: message})
	if len(s.events) > eventLogSize {
		s.events = s.events[len(s.events)-eventLogSize:]
	}
}

func flattenSubs(grouped map[string][]model.SubTask) []model.SubTask {
	total := 0
	for _, subs := range grouped {
		total += len(subs)
	}
	out := make([]model.SubTask, 0, total)
	for _, subs := range grouped {
		out = append(out, subs...)
	}
	return out
}
