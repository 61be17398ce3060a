package update

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/alarm"
	"dayplan/internal/model"
	"dayplan/internal/storage"
)

func wakeupFor(key, payload string) alarm.Wakeup {
	return alarm.Wakeup{Key: key, TriggerAt: fixedNow(), Payload: payload}
}

type fakeToggler struct {
	toggled    []string
	subToggled []string
}

func (f *fakeToggler) Toggle(_ context.Context, task model.Task, done bool) (model.Task, error) {
	f.toggled = append(f.toggled, task.ID)
	task.IsCompleted = done
	return task, nil
}

func (f *fakeToggler) ToggleSub(_ context.Context, sub model.SubTask, done bool) (model.SubTask, error) {
	f.subToggled = append(f.subToggled, sub.ID)
	sub.IsCompleted = done
	return sub, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
}

func testSnapshot() storage.Snapshot {
	today := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	nextWeek := today.AddDate(0, 0, 7)
	return storage.Snapshot{
		Tasks: []model.Task{
			{ID: "t1", Title: "Pay rent", DueDate: &today, CreatedAt: yesterday},
			{ID: "t2", Title: "Old errand", DueDate: &yesterday, CreatedAt: yesterday},
			{ID: "t3", Title: "Plan trip", DueDate: &nextWeek, CreatedAt: yesterday},
			{ID: "t4", Title: "Done already", DueDate: &today, IsCompleted: true, CompletedAt: &today, CreatedAt: yesterday},
		},
		SubTasks: map[string][]model.SubTask{
			"t1": {
				{ID: "s1", MainTaskID: "t1", Title: "Transfer money", DueDate: &today, CreatedAt: yesterday},
			},
		},
		Tags: []model.Tag{{ID: "tag-1", Name: "home"}},
	}
}

func newTestModel(t *testing.T, deps Deps) Model {
	t.Helper()
	if deps.Now == nil {
		deps.Now = fixedNow
	}
	m := NewModel(deps)
	m.applySnapshot(testSnapshot())
	m.syncBubbleData()
	return m
}

func pressKey(t *testing.T, m Model, s string) Model {
	t.Helper()
	var km tea.KeyMsg
	switch s {
	case " ":
		km = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		km = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		km = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		km = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, _ := m.Update(km)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return out
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = pressKey(t, m, string(r))
	}
	return m
}

func TestViewSwitching(t *testing.T) {
	m := newTestModel(t, Deps{})
	if m.CurrentView != ViewTasks {
		t.Fatalf("default view = %s", m.CurrentView)
	}
	m = pressKey(t, m, "2")
	if m.CurrentView != ViewToday {
		t.Fatalf("expected Today view, got %s", m.CurrentView)
	}
	m = pressKey(t, m, "3")
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected Calendar view, got %s", m.CurrentView)
	}
	m = pressKey(t, m, "1")
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected Tasks view, got %s", m.CurrentView)
	}
}

func TestTasksCursorAndToggle(t *testing.T) {
	toggler := &fakeToggler{}
	m := newTestModel(t, Deps{Toggler: toggler})

	m = pressKey(t, m, "j")
	if m.SelectedKey != "t2" {
		t.Fatalf("expected t2 selected, got %q", m.SelectedKey)
	}
	m = pressKey(t, m, " ")
	if len(toggler.toggled) != 1 || toggler.toggled[0] != "t2" {
		t.Fatalf("unexpected toggles: %v", toggler.toggled)
	}
}

func TestTodayRowsBuckets(t *testing.T) {
	m := newTestModel(t, Deps{})

	// t2 is overdue, t1 and its subtask are due today; t3 is next week and
	// t4 is completed, neither should appear.
	if len(m.TodayRows) != 3 {
		t.Fatalf("expected 3 today rows, got %d: %#v", len(m.TodayRows), m.TodayRows)
	}
	if !m.TodayRows[0].Overdue || m.TodayRows[0].Key != "t2" {
		t.Fatalf("expected overdue t2 first: %#v", m.TodayRows[0])
	}
	if m.TodayRows[1].Key != "t1" {
		t.Fatalf("expected t1 second: %#v", m.TodayRows[1])
	}
	if m.TodayRows[2].Key != "sub:s1" || m.TodayRows[2].Kind != "sub" {
		t.Fatalf("expected namespaced subtask row: %#v", m.TodayRows[2])
	}
}

func TestTodayToggleSubtask(t *testing.T) {
	toggler := &fakeToggler{}
	m := newTestModel(t, Deps{Toggler: toggler})
	m = pressKey(t, m, "2")
	m = pressKey(t, m, "j")
	m = pressKey(t, m, "j")
	if m.SelectedKey != "sub:s1" {
		t.Fatalf("expected subtask selected, got %q", m.SelectedKey)
	}
	m = pressKey(t, m, " ")
	if len(toggler.subToggled) != 1 || toggler.subToggled[0] != "s1" {
		t.Fatalf("unexpected sub toggles: %v", toggler.subToggled)
	}
	if len(toggler.toggled) != 0 {
		t.Fatalf("main task toggled unexpectedly: %v", toggler.toggled)
	}
}

func TestCalendarMonthNavigation(t *testing.T) {
	m := newTestModel(t, Deps{})
	m = pressKey(t, m, "3")

	if len(m.Calendar.Items) == 0 {
		t.Fatalf("expected February items")
	}
	start := m.Calendar.FocusMonth
	m = pressKey(t, m, "l")
	if !m.Calendar.FocusMonth.Equal(start.AddDate(0, 1, 0)) {
		t.Fatalf("expected next month, got %s", m.Calendar.FocusMonth)
	}
	m = pressKey(t, m, "t")
	if !m.Calendar.FocusMonth.Equal(start) {
		t.Fatalf("expected current month, got %s", m.Calendar.FocusMonth)
	}
}

func TestPaletteShowCommand(t *testing.T) {
	m := newTestModel(t, Deps{})
	m = pressKey(t, m, "/")
	if !m.Palette.Active {
		t.Fatalf("palette should be active")
	}
	m = typeString(t, m, "show done")
	m = pressKey(t, m, "enter")
	if m.Palette.Active {
		t.Fatalf("palette should close on enter")
	}
	if m.Filter.Subject != "done" {
		t.Fatalf("filter subject = %q", m.Filter.Subject)
	}
	visible := m.visibleTasks()
	if len(visible) != 1 || visible[0].ID != "t4" {
		t.Fatalf("unexpected visible tasks: %#v", visible)
	}
}

func TestPaletteAddCommand(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "update-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := storage.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	m := newTestModel(t, Deps{UserID: "u", Store: store})
	m = pressKey(t, m, "/")
	m = typeString(t, m, "add buy milk due:2026-02-11 tag:home")
	m = pressKey(t, m, "enter")

	if m.Status.IsError {
		t.Fatalf("unexpected error status: %s", m.Status.Text)
	}
	tasks, err := store.ListTasks(context.Background(), "u")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "buy milk" {
		t.Fatalf("task not created: %#v", tasks)
	}
	if tasks[0].DueDate == nil {
		t.Fatalf("due date missing: %#v", tasks[0])
	}
	if len(tasks[0].TagIDs) != 1 || tasks[0].TagIDs[0] != "tag-1" {
		t.Fatalf("expected existing tag reused: %#v", tasks[0].TagIDs)
	}
}

func TestPaletteDoneByTitlePrefix(t *testing.T) {
	toggler := &fakeToggler{}
	m := newTestModel(t, Deps{Toggler: toggler})
	m = pressKey(t, m, "/")
	m = typeString(t, m, "done pay")
	m = pressKey(t, m, "enter")
	if len(toggler.toggled) != 1 || toggler.toggled[0] != "t1" {
		t.Fatalf("unexpected toggles: %v", toggler.toggled)
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
}

func TestPaletteEscCancels(t *testing.T) {
	m := newTestModel(t, Deps{})
	m = pressKey(t, m, "/")
	m = typeString(t, m, "add half typed")
	m = pressKey(t, m, "esc")
	if m.Palette.Active {
		t.Fatalf("palette should close on esc")
	}
}

func TestUIStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui-state.json")
	m := newTestModel(t, Deps{StatePath: path})
	m = pressKey(t, m, "2")
	m = pressKey(t, m, "j")
	m = pressKey(t, m, "q")
	if !m.Quitting {
		t.Fatalf("expected quitting")
	}

	restored := NewModel(Deps{StatePath: path, Now: fixedNow})
	if restored.CurrentView != ViewToday {
		t.Fatalf("view not restored: %s", restored.CurrentView)
	}
	if restored.SelectedKey == "" {
		t.Fatalf("selected key not restored")
	}
}

func TestSnapshotRefreshesBubbleComponents(t *testing.T) {
	m := NewModel(Deps{Now: fixedNow})
	if len(m.tasksList.Items()) != 0 {
		t.Fatalf("expected empty list before first snapshot, got %d items", len(m.tasksList.Items()))
	}

	next, _ := m.Update(SnapshotMsg{OK: true, Snap: testSnapshot()})
	got := next.(Model)
	if n := len(got.tasksList.Items()); n != 4 {
		t.Fatalf("tasks list items = %d, want 4", n)
	}
	if n := len(got.calendarTable.Rows()); n != 3 {
		t.Fatalf("calendar rows = %d, want 3 open February tasks", n)
	}
}

func TestWindowSizeRecorded(t *testing.T) {
	m := newTestModel(t, Deps{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 42})
	got := next.(Model)
	if got.Width != 140 || got.Height != 42 {
		t.Fatalf("size not recorded: %dx%d", got.Width, got.Height)
	}
}

func TestAlarmFiredNotifies(t *testing.T) {
	m := newTestModel(t, Deps{})
	next, _ := m.Update(AlarmFiredMsg{OK: true, Wakeup: wakeupFor("t1", "Pay rent")})
	m = next.(Model)
	if len(m.Notifications) != 1 || m.Notifications[0].Body != "Pay rent" {
		t.Fatalf("unexpected notifications: %#v", m.Notifications)
	}
	if m.Status.Text == "" {
		t.Fatalf("expected status line set")
	}
}
