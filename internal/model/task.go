package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingID    = errors.New("model: id is required")
	ErrMissingTitle = errors.New("model: title is required")
	ErrOrphanedSub  = errors.New("model: subtask main_task_id is required")
)

// Task is a main task. Dates are optional; which of them matter for
// scheduling depends on ManualSchedule: a manual task is governed by its
// (StartDate, EndDate) range, a derived task only by DueDate. StartDate and
// EndDate on a derived task may hold stale pre-migration values and must not
// be trusted without checking ManualSchedule.
type Task struct {
	ID             string
	Title          string
	Description    string
	StartDate      *time.Time
	EndDate        *time.Time
	DueDate        *time.Time
	IsCompleted    bool
	CompletedAt    *time.Time
	ManualSchedule bool
	TagIDs         []string
	AlarmEnabled   bool
	MainColor      string
	CreatedAt      time.Time
}

// SubTask belongs to exactly one Task and is deleted with it. Subtasks have
// no manual/derived distinction: a present (StartDate, EndDate) range wins,
// otherwise DueDate is the fallback.
type SubTask struct {
	ID          string
	MainTaskID  string
	Title       string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	DueDate     *time.Time
	IsCompleted bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Tag is assignable to any number of tasks. Hidden tags stay assignable but
// are excluded from quick-filter chips; Order is the chip sort key.
type Tag struct {
	ID     string
	Name   string
	Hidden bool
	Order  int
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}
	if t.IsCompleted && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is completed")
	}
	if !t.IsCompleted && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	return nil
}

func (s SubTask) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(s.MainTaskID) == "" {
		return ErrOrphanedSub
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

func (g Tag) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("model: tag name is required")
	}
	return nil
}

// HasTag reports whether the task carries the given tag id.
func (t Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// RepairLegacySchedule upgrades records written before the manual-schedule
// flag existed: a task with an end date but ManualSchedule false was in fact
// user-scheduled, so the flag is forced on. Must run immediately after a
// record is read, before any classification sees it.
func RepairLegacySchedule(t Task) Task {
	if !t.ManualSchedule && t.EndDate != nil {
		t.ManualSchedule = true
	}
	return t
}
