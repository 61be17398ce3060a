package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"dayplan/internal/model"
	"dayplan/internal/schedule"
	"dayplan/internal/views"
)

func (m *Model) initBubbleComponents() {
	m.tasksList = list.New([]list.Item{}, list.NewDefaultDelegate(), 58, 12)
	m.tasksList.Title = "Tasks (list)"
	m.tasksList.SetShowHelp(false)
	m.tasksList.SetFilteringEnabled(false)

	m.todayList = list.New([]list.Item{}, list.NewDefaultDelegate(), 58, 12)
	m.todayList.Title = "Today (list)"
	m.todayList.SetShowHelp(false)
	m.todayList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Done", Width: 5},
		{Title: "Title", Width: 32},
	}
	m.calendarTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.detailView = viewport.New(56, 12)

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	tasks := m.visibleTasks()
	taskItems := make([]list.Item, 0, len(tasks))
	for _, task := range tasks {
		taskItems = append(taskItems, listItem{title: task.Title, description: taskRowDescription(task)})
	}
	m.tasksList.SetItems(taskItems)
	if len(taskItems) > 0 && m.TasksCursor < len(taskItems) {
		m.tasksList.Select(m.TasksCursor)
	}

	todayItems := make([]list.Item, 0, len(m.TodayRows))
	for _, row := range m.TodayRows {
		title := row.Task.Title
		kind := "task"
		if row.Kind == "sub" {
			title = row.Sub.Title
			kind = "subtask"
		}
		desc := kind
		if row.Overdue {
			desc = "overdue"
		}
		todayItems = append(todayItems, listItem{title: title, description: desc})
	}
	m.todayList.SetItems(todayItems)
	if len(todayItems) > 0 && m.TodayCursor < len(todayItems) {
		m.todayList.Select(m.TodayCursor)
	}

	rows := make([]table.Row, 0, len(m.Calendar.Items))
	for _, task := range m.Calendar.Items {
		done := " "
		if task.IsCompleted {
			done = "x"
		}
		rows = append(rows, table.Row{formatDate(task.DueDate), done, task.Title})
	}
	m.calendarTable.SetRows(rows)
	if len(rows) > 0 && m.Calendar.Cursor < len(rows) {
		m.calendarTable.SetCursor(m.Calendar.Cursor)
	}

	if m.Palette.Active {
		m.commandInput.Focus()
	}

	if task, ok := m.selectedTaskDetail(); ok {
		md := task.Description
		if strings.TrimSpace(md) == "" {
			md = "_No description_"
		}
		m.detailView.SetContent(views.RenderMarkdown(md))
	}
}

func (m *Model) clampCursors() {
	if n := len(m.visibleTasks()); m.TasksCursor >= n {
		m.TasksCursor = max(0, n-1)
	}
	if n := len(m.TodayRows); m.TodayCursor >= n {
		m.TodayCursor = max(0, n-1)
	}
	if n := len(m.Calendar.Items); m.Calendar.Cursor >= n {
		m.Calendar.Cursor = max(0, n-1)
	}
}

// selectedTaskDetail resolves SelectedKey to a main task for the detail
// pane; subtask keys resolve to their parent task.
func (m Model) selectedTaskDetail() (model.Task, bool) {
	key := m.SelectedKey
	if strings.HasPrefix(key, "sub:") {
		subID := strings.TrimPrefix(key, "sub:")
		for mainID, subs := range m.Snapshot.SubTasks {
			for _, sub := range subs {
				if sub.ID == subID {
					key = mainID
				}
			}
		}
	}
	for _, task := range m.Snapshot.Tasks {
		if task.ID == key {
			return task, true
		}
	}
	return model.Task{}, false
}

func (m Model) renderTasksView() string {
	tasks := m.visibleTasks()
	rows := make([]views.TaskRowData, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, views.TaskRowData{
			ID:     task.ID,
			Title:  task.Title,
			Done:   task.IsCompleted,
			Due:    formatDate(task.DueDate),
			Window: formatWindow(task),
			Tags:   m.tagNames(task.TagIDs),
			Alarm:  task.AlarmEnabled,
		})
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		ListView:   m.tasksList.View(),
		Rows:       rows,
		SelectedID: m.SelectedKey,
		FilterTag:  m.Filter.Tag,
		Subject:    m.Filter.Subject,
	})
}

func (m Model) renderTodayView() string {
	rows := make([]views.TodayRowData, 0, len(m.TodayRows))
	for _, row := range m.TodayRows {
		data := views.TodayRowData{Key: row.Key, Kind: row.Kind, Overdue: row.Overdue}
		if row.Kind == "sub" {
			data.Title = row.Sub.Title
			data.Done = row.Sub.IsCompleted
			data.Due = formatDate(row.Sub.DueDate)
		} else {
			data.Title = row.Task.Title
			data.Done = row.Task.IsCompleted
			data.Due = formatDate(row.Task.DueDate)
		}
		rows = append(rows, data)
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		ListView:   m.todayList.View(),
		Rows:       rows,
		SelectedID: m.SelectedKey,
		Date:       m.deps.Now().Format("2006-01-02"),
	})
}

func (m Model) renderCalendarView() string {
	days := make([]views.AgendaDayData, 0)
	var current *views.AgendaDayData
	for _, task := range m.Calendar.Items {
		date := formatDate(task.DueDate)
		if date == "" {
			date = formatWindow(task)
		}
		if current == nil || current.Date != date {
			days = append(days, views.AgendaDayData{Date: date})
			current = &days[len(days)-1]
		}
		current.Items = append(current.Items, views.AgendaItemData{
			ID:    task.ID,
			Title: task.Title,
			Done:  task.IsCompleted,
		})
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Month:      m.Calendar.FocusMonth.Format("January 2006"),
		Grid:       m.monthGrid(),
		TableView:  m.calendarTable.View(),
		Days:       days,
		SelectedID: m.SelectedKey,
	})
}

func (m Model) renderDetailPane() string {
	task, ok := m.selectedTaskDetail()
	if !ok {
		return views.RenderDetailPane(views.DetailData{})
	}
	return views.RenderDetailPane(views.DetailData{
		Title:        task.Title,
		Due:          formatDate(task.DueDate),
		Window:       formatWindow(task),
		Tags:         m.tagNames(task.TagIDs),
		AlarmEnabled: task.AlarmEnabled,
		MarkdownView: m.detailView.View(),
	})
}

func (m Model) tagNames(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[string]string, len(m.Snapshot.Tags))
	for _, tag := range m.Snapshot.Tags {
		byID[tag.ID] = tag.Name
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// taskRowDescription is the list item subtitle: the manual window when one
// exists, otherwise the due date.
func taskRowDescription(task model.Task) string {
	if w := formatWindow(task); w != "" {
		return w
	}
	if d := formatDate(task.DueDate); d != "" {
		return "due " + d
	}
	return "no date"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatWindow prints a manual task's start..end range; empty for derived
// tasks.
func formatWindow(task model.Task) string {
	eff := schedule.Classify(task)
	if !eff.Manual || eff.Start == nil || eff.End == nil {
		return ""
	}
	if eff.Start.Equal(*eff.End) {
		return eff.Start.Format("2006-01-02")
	}
	return fmt.Sprintf("%s..%s", eff.Start.Format("2006-01-02"), eff.End.Format("2006-01-02"))
}
