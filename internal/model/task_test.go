package model

import (
	"errors"
	"testing"
	"time"
)

func ts(day int) *time.Time {
	t := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		ID:        "task-1",
		Title:     "Buy groceries",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletionPairing(t *testing.T) {
	task := Task{ID: "task-1", Title: "Done task", IsCompleted: true}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for completed task without completed_at")
	}

	task.IsCompleted = false
	task.CompletedAt = ts(2)
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for incomplete task with completed_at")
	}
}

func TestSubTaskValidateRequiresParent(t *testing.T) {
	sub := SubTask{ID: "sub-1", Title: "Step one"}
	if err := sub.Validate(); !errors.Is(err, ErrOrphanedSub) {
		t.Fatalf("expected ErrOrphanedSub, got: %v", err)
	}
}

func TestRepairLegacySchedule(t *testing.T) {
	legacy := Task{ID: "task-1", Title: "Old record", EndDate: ts(5)}
	repaired := RepairLegacySchedule(legacy)
	if !repaired.ManualSchedule {
		t.Fatal("expected manual schedule flag forced on for legacy record with end date")
	}

	derived := Task{ID: "task-2", Title: "Derived", DueDate: ts(7)}
	if RepairLegacySchedule(derived).ManualSchedule {
		t.Fatal("derived task without end date must stay derived")
	}

	manual := Task{ID: "task-3", Title: "Manual", ManualSchedule: true}
	if !RepairLegacySchedule(manual).ManualSchedule {
		t.Fatal("manual flag must never be cleared")
	}
}

func TestHasTag(t *testing.T) {
	task := Task{ID: "task-1", Title: "Tagged", TagIDs: []string{"a", "b"}}
	if !task.HasTag("b") {
		t.Fatal("expected tag b to be present")
	}
	if task.HasTag("c") {
		t.Fatal("did not expect tag c")
	}
}
