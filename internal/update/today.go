package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/reminder"
	"dayplan/internal/schedule"
)

// buildTodayRows selects the tasks and subtasks whose effective window
// overlaps the current local day, overdue open items first.
func (m Model) buildTodayRows() []TodayRow {
	now := m.deps.Now()
	winStart, winEnd := schedule.DayWindow(now)

	tasks := schedule.SelectDueTasks(m.Snapshot.Tasks, winStart, winEnd)
	schedule.SortChronological(tasks)
	rows := make([]TodayRow, 0, len(tasks))
	overdue := make([]TodayRow, 0)
	for _, task := range m.Snapshot.Tasks {
		if task.IsCompleted {
			continue
		}
		eff := schedule.Classify(task)
		if eff.End != nil && eff.End.Before(winStart) {
			overdue = append(overdue, TodayRow{Key: task.ID, Kind: "task", Task: task, Overdue: true})
		}
	}
	for _, task := range tasks {
		rows = append(rows, TodayRow{Key: task.ID, Kind: "task", Task: task})
		for _, sub := range schedule.SelectDueSubTasks(m.Snapshot.SubTasks[task.ID], winStart, winEnd) {
			rows = append(rows, TodayRow{Key: reminder.SubKeyPrefix + sub.ID, Kind: "sub", Sub: sub})
		}
	}
	return append(overdue, rows...)
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.TodayCursor > 0 {
			m.TodayCursor--
		}
	case "down", "j":
		if m.TodayCursor < len(m.TodayRows)-1 {
			m.TodayCursor++
		}
	case " ":
		if row, ok := m.currentTodayRow(); ok {
			if row.Kind == "sub" {
				return m.toggleSub(row.Sub)
			}
			return m.toggleTask(row.Task)
		}
	}
	m.syncSelectedToTodayCursor()
	return m, nil
}

func (m *Model) syncSelectedToTodayCursor() {
	if row, ok := m.currentTodayRow(); ok {
		m.SelectedKey = row.Key
	}
}

func (m Model) currentTodayRow() (TodayRow, bool) {
	if m.TodayCursor < 0 || m.TodayCursor >= len(m.TodayRows) {
		return TodayRow{}, false
	}
	return m.TodayRows[m.TodayCursor], true
}
