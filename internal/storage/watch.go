package storage

import (
	"context"
	"sync"

	"dayplan/internal/model"
)

// Snapshot is one consistent view of a user's documents, pushed to
// subscribers after every mutation. Tasks come back legacy-repaired.
type Snapshot struct {
	Tasks    []model.Task
	SubTasks map[string][]model.SubTask
	Tags     []model.Tag
}

// Subscription is a live feed of Snapshots for one user. Delivery is
// latest-wins: a slow consumer sees the newest snapshot, not every
// intermediate one.
type Subscription struct {
	ch     chan Snapshot
	cancel func()
	once   sync.Once
}

func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// subscribers tracks live subscriptions per user. All channel sends and
// closes happen under mu, so a send never races a close.
type subscribers struct {
	mu     sync.Mutex
	nextID uint64
	byUser map[string]map[uint64]*Subscription
	closed bool
}

func (s *subscribers) init() {
	s.byUser = make(map[string]map[uint64]*Subscription)
}

func (s *subscribers) add(userID string, first Snapshot) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	sub := &Subscription{ch: make(chan Snapshot, 1)}
	sub.cancel = func() { s.remove(userID, id) }
	if s.closed {
		close(sub.ch)
		return sub
	}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[uint64]*Subscription)
	}
	s.byUser[userID][id] = sub
	sub.ch <- first
	return sub
}

func (s *subscribers) remove(userID string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byUser[userID]
	sub, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(s.byUser, userID)
	}
	close(sub.ch)
}

func (s *subscribers) active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser[userID]) > 0
}

func (s *subscribers) publish(userID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.byUser[userID] {
		// Replace any undelivered snapshot with the newer one.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snap
	}
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, subs := range s.byUser {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	s.byUser = make(map[string]map[uint64]*Subscription)
}

// Subscribe opens a snapshot feed for the user. The current snapshot is
// delivered immediately, then one per mutation. Callers must Close the
// subscription when done.
func (s *Store) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.subs.add(userID, snap), nil
}

func (s *Store) snapshot(ctx context.Context, userID string) (Snapshot, error) {
	tasks, err := s.ListTasks(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	subTasks, err := s.ListSubTasks(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	tags, err := s.ListTags(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Tasks: tasks, SubTasks: subTasks, Tags: tags}, nil
}

// broadcast pushes a fresh snapshot to every subscriber of the user.
// Errors reading the snapshot are swallowed: the write that triggered the
// broadcast already succeeded, and subscribers recover on the next one.
func (s *Store) broadcast(ctx context.Context, userID string) {
	if !s.subs.active(userID) {
		return
	}
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return
	}
	s.subs.publish(userID, snap)
}
