package reminder

import (
	"fmt"
	"sync"
	"time"

	"dayplan/internal/model"
)

// AlarmScheduler is the platform wake-up facility. Schedule re-arms an
// existing key; both operations are idempotent point operations.
type AlarmScheduler interface {
	Schedule(key string, triggerAt time.Time, payload string) error
	Cancel(key string)
}

// Stats summarizes one sync pass for the status line.
type Stats struct {
	Scheduled int
	Cancelled int
	Failed    int
}

// Syncer reconciles local wake-ups against the latest task snapshot. Per
// user, syncs are serialized by a keyed mutex so a tasks-listener pass and a
// manual toggle cannot interleave their read-modify-write of the stored set.
//
// The full desired set is persisted even when individual Schedule calls
// fail: the next sync (app restart or any data change) re-plans from the
// tasks themselves, so an under-armed pass self-heals rather than looping on
// a broken alarm API.
type Syncer struct {
	store  Store
	alarms AlarmScheduler

	// PermissionGranted reports whether the OS notification permission is
	// present. Absent permission is treated as reminders globally off.
	PermissionGranted func() bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSyncer(store Store, alarms AlarmScheduler) *Syncer {
	return &Syncer{
		store:             store,
		alarms:            alarms,
		PermissionGranted: func() bool { return true },
		locks:             make(map[string]*sync.Mutex),
	}
}

func (s *Syncer) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Sync recomputes the desired reminder set from the snapshot, diffs it
// against the stored set, issues the cancel/schedule operations best-effort
// per item, and replaces the stored set with the desired one.
func (s *Syncer) Sync(userID string, tasks []model.Task, subs []model.SubTask, prefs Preferences, now time.Time) (Stats, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	stored, err := s.store.Load(userID)
	if err != nil {
		return Stats{}, fmt.Errorf("load reminder cache: %w", err)
	}

	var plan Plan
	if !s.PermissionGranted() || (!prefs.MajorEnabled && !prefs.SubEnabled) {
		plan = TeardownPlan(stored)
	} else {
		plan = BuildPlan(tasks, subs, stored, prefs, now)
	}

	var stats Stats
	for _, key := range plan.ToCancel {
		s.alarms.Cancel(key)
		stats.Cancelled++
	}
	for _, item := range plan.ToSchedule {
		if err := s.alarms.Schedule(item.Key, item.TriggerAt, item.Title); err != nil {
			stats.Failed++
			continue
		}
		stats.Scheduled++
	}

	if err := s.store.Save(userID, plan.Desired); err != nil {
		return stats, fmt.Errorf("save reminder cache: %w", err)
	}
	return stats, nil
}
