package complete

import (
	"testing"
	"time"

	"dayplan/internal/model"
)

var toggleNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestToggleDerivedStampsAndClearsDueDate(t *testing.T) {
	task := model.Task{ID: "t1", Title: "Undated chore"}

	res := Toggle(task, true, toggleNow)
	if !res.Task.IsCompleted || res.Task.CompletedAt == nil {
		t.Fatalf("completion state not applied: %+v", res.Task)
	}
	if res.Task.DueDate == nil || !res.Task.DueDate.Equal(toggleNow) {
		t.Fatalf("completing an undated derived task must stamp due date = now, got %v", res.Task.DueDate)
	}
	if !res.Pending.UpdatesDueDate {
		t.Fatal("derived toggle must mark updates_due_date")
	}

	res = Toggle(res.Task, false, toggleNow.Add(time.Hour))
	if res.Task.IsCompleted || res.Task.CompletedAt != nil {
		t.Fatalf("uncomplete not applied: %+v", res.Task)
	}
	if res.Task.DueDate != nil {
		t.Fatalf("uncompleting must clear the stamped due date, got %v", res.Task.DueDate)
	}
}

func TestToggleDerivedKeepsExistingDueDate(t *testing.T) {
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t2", Title: "Dated chore", DueDate: &due}

	res := Toggle(task, true, toggleNow)
	if !res.Task.DueDate.Equal(due) {
		t.Fatalf("existing due date must be kept on completion, got %v", res.Task.DueDate)
	}
}

func TestToggleManualNeverTouchesDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t3", Title: "Trip", ManualSchedule: true, StartDate: &start, EndDate: &end}

	res := Toggle(task, true, toggleNow)
	if _, ok := res.Fields[FieldDueDate]; ok {
		t.Fatal("manual task payload must not contain a due date key")
	}
	if res.Pending.UpdatesDueDate {
		t.Fatal("manual toggle must not mark updates_due_date")
	}
	if !res.Task.StartDate.Equal(start) || !res.Task.EndDate.Equal(end) {
		t.Fatalf("manual dates changed: %+v", res.Task)
	}
	if _, ok := res.Fields[FieldIsCompleted]; !ok {
		t.Fatal("payload must always carry isCompleted")
	}
}

func TestToggleSubNeverTouchesDates(t *testing.T) {
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	sub := model.SubTask{ID: "s1", MainTaskID: "t1", Title: "Step", DueDate: &due}

	updated, fields := ToggleSub(sub, true, toggleNow)
	if !updated.IsCompleted || updated.CompletedAt == nil {
		t.Fatalf("completion state not applied: %+v", updated)
	}
	if !updated.DueDate.Equal(due) {
		t.Fatalf("subtask due date changed: %v", updated.DueDate)
	}
	if _, ok := fields[FieldDueDate]; ok {
		t.Fatal("subtask payload must not contain date fields")
	}
}
