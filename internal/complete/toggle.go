package complete

import (
	"time"

	"dayplan/internal/model"
	"dayplan/internal/outbox"
)

// Remote field names shared with the store's write path.
const (
	FieldIsCompleted = "isCompleted"
	FieldCompletedAt = "completedAt"
	FieldDueDate     = "dueDate"
)

// ToggleResult carries the locally updated task, the minimal remote field
// payload, and the outbox record that must be durable before the remote
// write is attempted.
type ToggleResult struct {
	Task    model.Task
	Fields  map[string]any
	Pending outbox.PendingWrite
}

// Toggle flips a task's completion state. Derived tasks let completion stamp
// the due date: completing an undated derived task sets DueDate to now so it
// shows up in date-based history, and uncompleting clears the stamp again.
// Manual-schedule tasks keep their explicit dates untouched, and their
// payload never contains a due date key.
func Toggle(t model.Task, done bool, now time.Time) ToggleResult {
	t.IsCompleted = done
	if done {
		completedAt := now
		t.CompletedAt = &completedAt
	} else {
		t.CompletedAt = nil
	}

	updatesDueDate := !t.ManualSchedule
	if updatesDueDate {
		if done {
			if t.DueDate == nil {
				stamp := now
				t.DueDate = &stamp
			}
		} else {
			t.DueDate = nil
		}
	}

	fields := map[string]any{
		FieldIsCompleted: t.IsCompleted,
		FieldCompletedAt: t.CompletedAt,
	}
	if updatesDueDate {
		fields[FieldDueDate] = t.DueDate
	}

	return ToggleResult{
		Task:   t,
		Fields: fields,
		Pending: outbox.PendingWrite{
			TaskID:         t.ID,
			IsCompleted:    t.IsCompleted,
			CompletedAt:    t.CompletedAt,
			DueDate:        t.DueDate,
			UpdatesDueDate: updatesDueDate,
		},
	}
}

// ToggleSub flips a subtask. Subtask dates are always manual, so the payload
// never touches them.
func ToggleSub(s model.SubTask, done bool, now time.Time) (model.SubTask, map[string]any) {
	s.IsCompleted = done
	if done {
		completedAt := now
		s.CompletedAt = &completedAt
	} else {
		s.CompletedAt = nil
	}
	return s, map[string]any{
		FieldIsCompleted: s.IsCompleted,
		FieldCompletedAt: s.CompletedAt,
	}
}

// PendingFields rebuilds the remote payload from a stored outbox record for
// replay at flush time.
func PendingFields(w outbox.PendingWrite) map[string]any {
	fields := map[string]any{
		FieldIsCompleted: w.IsCompleted,
		FieldCompletedAt: w.CompletedAt,
	}
	if w.UpdatesDueDate {
		fields[FieldDueDate] = w.DueDate
	}
	return fields
}
