package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/model"
	"dayplan/internal/schedule"
)

// buildCalendarItems selects the tasks whose effective window overlaps the
// focused month, in chronological order.
func (m Model) buildCalendarItems() []model.Task {
	start := m.Calendar.FocusMonth
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	tasks := schedule.SelectDueTasks(m.Snapshot.Tasks, start, end)
	schedule.SortChronological(tasks)
	return tasks
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.Calendar.FocusMonth = m.Calendar.FocusMonth.AddDate(0, -1, 0)
		m.Calendar.Items = m.buildCalendarItems()
		m.Calendar.Cursor = 0
	case "l", "right":
		m.Calendar.FocusMonth = m.Calendar.FocusMonth.AddDate(0, 1, 0)
		m.Calendar.Items = m.buildCalendarItems()
		m.Calendar.Cursor = 0
	case "t":
		m.Calendar.FocusMonth = monthStart(m.deps.Now())
		m.Calendar.Items = m.buildCalendarItems()
		m.Calendar.Cursor = 0
	case "up", "k":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
	case "down", "j":
		if m.Calendar.Cursor < len(m.Calendar.Items)-1 {
			m.Calendar.Cursor++
		}
	}
	if m.Calendar.Cursor >= 0 && m.Calendar.Cursor < len(m.Calendar.Items) {
		m.SelectedKey = m.Calendar.Items[m.Calendar.Cursor].ID
	}
	return m, nil
}

// monthGrid renders a plain text month calendar. Days with at least one due
// task are marked with an asterisk, the current day with brackets.
func (m Model) monthGrid() string {
	start := m.Calendar.FocusMonth
	now := m.deps.Now()
	marked := m.markedDays()

	var b strings.Builder
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")

	// Monday-first column offset for the 1st of the month.
	offset := (int(start.Weekday()) + 6) % 7
	col := 0
	for i := 0; i < offset; i++ {
		b.WriteString("    ")
		col++
	}
	daysInMonth := start.AddDate(0, 1, -1).Day()
	for day := 1; day <= daysInMonth; day++ {
		mark := " "
		if marked[day] {
			mark = "*"
		}
		cell := fmt.Sprintf(" %2d%s", day, mark)
		if sameDay(start.AddDate(0, 0, day-1), now) {
			cell = fmt.Sprintf("[%2d]", day)
		}
		b.WriteString(cell)
		col++
		if col%7 == 0 {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), " \n")
}

func (m Model) markedDays() map[int]bool {
	start := m.Calendar.FocusMonth
	daysInMonth := start.AddDate(0, 1, -1).Day()
	marked := make(map[int]bool)
	for day := 1; day <= daysInMonth; day++ {
		dayStart := start.AddDate(0, 0, day-1)
		dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
		if len(schedule.SelectDueTasks(m.Snapshot.Tasks, dayStart, dayEnd)) > 0 {
			marked[day] = true
		}
	}
	return marked
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
