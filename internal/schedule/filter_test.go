package schedule

import (
	"testing"
	"time"

	"dayplan/internal/model"
)

func TestClassifyManualUsesRange(t *testing.T) {
	task := model.Task{ID: "a", Title: "Trip", ManualSchedule: true, StartDate: at(1), EndDate: at(3)}
	eff := Classify(task)
	if !eff.Manual || !eff.Start.Equal(*at(1)) || !eff.End.Equal(*at(3)) {
		t.Fatalf("unexpected effective schedule: %+v", eff)
	}
}

func TestClassifyDerivedIgnoresStaleRange(t *testing.T) {
	task := model.Task{ID: "b", Title: "Stale", StartDate: at(1), DueDate: at(9)}
	eff := Classify(task)
	if eff.Manual {
		t.Fatal("derived task classified as manual")
	}
	if !eff.Start.Equal(*at(9)) || !eff.End.Equal(*at(9)) {
		t.Fatalf("derived task must collapse to due date, got %+v", eff)
	}
}

func TestClassifyAfterLegacyRepair(t *testing.T) {
	legacy := model.Task{ID: "c", Title: "Legacy", EndDate: at(4)}
	eff := Classify(model.RepairLegacySchedule(legacy))
	if !eff.Manual {
		t.Fatal("repaired legacy record must classify as manual")
	}
	if !eff.Start.Equal(*at(4)) || !eff.End.Equal(*at(4)) {
		t.Fatalf("unexpected window: %+v", eff)
	}
}

func TestSelectDueTasksEndToEnd(t *testing.T) {
	taskA := model.Task{ID: "A", Title: "Manual span", ManualSchedule: true, StartDate: at(1), EndDate: at(3)}
	taskB := model.Task{ID: "B", Title: "Due later", DueDate: at(5)}
	undated := model.Task{ID: "C", Title: "No deadline"}

	winStart, winEnd := DayWindow(*at(2))
	due := SelectDueTasks([]model.Task{taskA, taskB, undated}, winStart, winEnd)
	if len(due) != 1 || due[0].ID != "A" {
		t.Fatalf("expected only task A due on day 2, got %v", ids(due))
	}

	done := *at(2)
	taskA.IsCompleted = true
	taskA.CompletedAt = &done
	due = SelectDueTasks([]model.Task{taskA, taskB, undated}, winStart, winEnd)
	if len(due) != 0 {
		t.Fatalf("completed task must never be due, got %v", ids(due))
	}
}

func TestSelectDueTasksUndatedDerivedNeverDue(t *testing.T) {
	task := model.Task{ID: "x", Title: "Someday"}
	winStart := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := SelectDueTasks([]model.Task{task}, winStart, winEnd); len(got) != 0 {
		t.Fatalf("undated derived task selected: %v", ids(got))
	}
}

func TestSelectDueTasksPreservesInputOrder(t *testing.T) {
	tasks := []model.Task{
		{ID: "late", Title: "t1", DueDate: at(9)},
		{ID: "early", Title: "t2", DueDate: at(2)},
	}
	winStart, winEnd := *at(1), *at(10)
	got := SelectDueTasks(tasks, winStart, winEnd)
	if len(got) != 2 || got[0].ID != "late" || got[1].ID != "early" {
		t.Fatalf("input order not preserved: %v", ids(got))
	}
}

func TestSelectDueSubTasks(t *testing.T) {
	subs := []model.SubTask{
		{ID: "s1", MainTaskID: "A", Title: "ranged", StartDate: at(1), EndDate: at(4)},
		{ID: "s2", MainTaskID: "A", Title: "fallback", DueDate: at(2)},
		{ID: "s3", MainTaskID: "A", Title: "outside", DueDate: at(9)},
		{ID: "s4", MainTaskID: "A", Title: "done", DueDate: at(2), IsCompleted: true},
	}
	winStart, winEnd := DayWindow(*at(2))
	got := SelectDueSubTasks(subs, winStart, winEnd)
	if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("unexpected due subtasks: %v", subIDs(got))
	}
}

func TestSortChronological(t *testing.T) {
	tasks := []model.Task{
		{ID: "undated", Title: "z"},
		{ID: "due5", Title: "a", DueDate: at(5)},
		{ID: "due2", Title: "b", DueDate: at(2)},
		{ID: "start1", Title: "c", StartDate: at(1)},
	}
	SortChronological(tasks)
	want := []string{"due2", "due5", "start1", "undated"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, tasks[i].ID, id, ids(tasks))
		}
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func subIDs(subs []model.SubTask) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}
