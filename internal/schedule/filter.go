package schedule

import (
	"sort"
	"time"

	"dayplan/internal/model"
)

// SelectDueTasks returns the incomplete tasks whose effective schedule
// overlaps the inclusive window. Input order is preserved; callers wanting
// chronological order sort explicitly with SortChronological.
func SelectDueTasks(tasks []model.Task, winStart, winEnd time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		eff := Classify(t)
		if !eff.Scheduled() {
			continue
		}
		if Overlaps(eff.Start, eff.End, nil, winStart, winEnd) {
			out = append(out, t)
		}
	}
	return out
}

// SelectDueSubTasks filters subtasks by the same overlap test, using the
// subtask's own date triple.
func SelectDueSubTasks(subs []model.SubTask, winStart, winEnd time.Time) []model.SubTask {
	out := make([]model.SubTask, 0, len(subs))
	for _, s := range subs {
		if s.IsCompleted {
			continue
		}
		if Overlaps(s.StartDate, s.EndDate, s.DueDate, winStart, winEnd) {
			out = append(out, s)
		}
	}
	return out
}

// DueToday is SelectDueTasks over the local calendar day containing now.
func DueToday(tasks []model.Task, now time.Time) []model.Task {
	start, end := DayWindow(now)
	return SelectDueTasks(tasks, start, end)
}

// SortChronological orders tasks by (due date, start date) ascending, with
// absent dates sorting last. This is the task-list view ordering.
func SortChronological(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := orMax(tasks[i].DueDate), orMax(tasks[j].DueDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return orMax(tasks[i].StartDate).Before(orMax(tasks[j].StartDate))
	})
}

var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func orMax(t *time.Time) time.Time {
	if t == nil {
		return maxTime
	}
	return *t
}
