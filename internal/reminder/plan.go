package reminder

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"dayplan/internal/model"
)

var ErrBadTimeOfDay = errors.New("reminder: invalid time of day")

// UntitledPlaceholder stands in for a blank title in the fired notification.
const UntitledPlaceholder = "(untitled)"

// SubKeyPrefix namespaces subtask reminder keys so they never collide with
// main-task ids.
const SubKeyPrefix = "sub:"

// Record is the last-known snapshot for which a wake-up was armed. The diff
// compares (DueAt, Title): a title-only change still re-arms because the
// fired notification embeds the title.
type Record struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	DueAt  time.Time `json:"due_at"`
}

// TimeOfDay is the configured reminder HH:mm.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTimeOfDay, raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTimeOfDay, raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTimeOfDay, raw)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// On combines the calendar day of due with the configured time of day.
func (d TimeOfDay) On(due time.Time) time.Time {
	y, m, day := due.Date()
	return time.Date(y, m, day, d.Hour, d.Minute, 0, 0, due.Location())
}

// Preferences holds the alarm settings for main tasks and subtasks.
type Preferences struct {
	MajorEnabled bool
	MajorTime    TimeOfDay
	SubEnabled   bool
	SubTime      TimeOfDay
}

// Item is a wake-up to arm.
type Item struct {
	Key       string
	Title     string
	TriggerAt time.Time
}

// Plan is the reconciliation outcome of one sync pass. Desired replaces the
// stored set atomically once the pass has been acted on.
type Plan struct {
	ToSchedule []Item
	ToCancel   []string
	Desired    map[string]Record
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.ToSchedule) == 0 && len(p.ToCancel) == 0
}

// BuildPlan diffs the desired reminder set against the previously stored one.
// Desired membership: incomplete, dated, alarm-enabled main tasks when major
// reminders are on, and incomplete dated subtasks when subtask reminders are
// on; triggers already in the past are dropped rather than armed. Unchanged
// entries appear in neither ToSchedule nor ToCancel, which is what makes a
// repeated sync a no-op.
func BuildPlan(tasks []model.Task, subs []model.SubTask, stored map[string]Record, prefs Preferences, now time.Time) Plan {
	desired := make(map[string]Record)
	triggers := make(map[string]time.Time)

	if prefs.MajorEnabled {
		for _, t := range tasks {
			if t.IsCompleted || !t.AlarmEnabled || t.DueDate == nil {
				continue
			}
			trigger := prefs.MajorTime.On(*t.DueDate)
			if !trigger.After(now) {
				continue
			}
			desired[t.ID] = Record{TaskID: t.ID, Title: titleOr(t.Title), DueAt: *t.DueDate}
			triggers[t.ID] = trigger
		}
	}
	if prefs.SubEnabled {
		for _, s := range subs {
			if s.IsCompleted || s.DueDate == nil {
				continue
			}
			trigger := prefs.SubTime.On(*s.DueDate)
			if !trigger.After(now) {
				continue
			}
			key := SubKeyPrefix + s.ID
			desired[key] = Record{TaskID: s.ID, Title: titleOr(s.Title), DueAt: *s.DueDate}
			triggers[key] = trigger
		}
	}

	plan := Plan{Desired: desired}
	for key := range stored {
		if _, ok := desired[key]; !ok {
			plan.ToCancel = append(plan.ToCancel, key)
		}
	}
	for key, rec := range desired {
		prev, ok := stored[key]
		if ok && prev.Title == rec.Title && prev.DueAt.Equal(rec.DueAt) {
			continue
		}
		plan.ToSchedule = append(plan.ToSchedule, Item{Key: key, Title: rec.Title, TriggerAt: triggers[key]})
	}

	sort.Strings(plan.ToCancel)
	sort.Slice(plan.ToSchedule, func(i, j int) bool { return plan.ToSchedule[i].Key < plan.ToSchedule[j].Key })
	return plan
}

// TeardownPlan cancels everything currently stored. Used when reminders are
// globally off or the notification permission is missing.
func TeardownPlan(stored map[string]Record) Plan {
	plan := Plan{Desired: make(map[string]Record)}
	for key := range stored {
		plan.ToCancel = append(plan.ToCancel, key)
	}
	sort.Strings(plan.ToCancel)
	return plan
}

func titleOr(title string) string {
	if strings.TrimSpace(title) == "" {
		return UntitledPlaceholder
	}
	return title
}
