package schedule

import (
	"time"

	"dayplan/internal/model"
)

// Effective is the schedule a task actually runs on after the manual/derived
// distinction has been resolved. Start and End are both nil for an undated
// task.
type Effective struct {
	Start  *time.Time
	End    *time.Time
	Manual bool
}

// Classify resolves a task's effective due window. Manual tasks normalize
// their explicit range with the due date as fallback; derived tasks collapse
// to the single due instant and ignore whatever stale start/end fields the
// record still carries. Callers must repair legacy records
// (model.RepairLegacySchedule) before classifying.
func Classify(t model.Task) Effective {
	if t.ManualSchedule {
		s, e := NormalizeRange(t.StartDate, t.EndDate, t.DueDate)
		return Effective{Start: s, End: e, Manual: true}
	}
	s, e := NormalizeRange(nil, nil, t.DueDate)
	return Effective{Start: s, End: e}
}

// ClassifySubTask resolves a subtask's window. Subtasks are always treated
// as manual ranges with the due date as fallback.
func ClassifySubTask(s model.SubTask) Effective {
	start, end := NormalizeRange(s.StartDate, s.EndDate, s.DueDate)
	return Effective{Start: start, End: end, Manual: true}
}

// Scheduled reports whether the effective schedule carries any date at all.
func (e Effective) Scheduled() bool {
	return e.Start != nil && e.End != nil
}
