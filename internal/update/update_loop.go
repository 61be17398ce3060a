package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/alarm"
	"dayplan/internal/storage"
	"dayplan/internal/views"
)

func waitForSnapshotCmd(ch <-chan storage.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		return SnapshotMsg{Snap: snap, OK: ok}
	}
}

func waitForAlarmCmd(ch <-chan alarm.Wakeup) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		w, ok := <-ch
		return AlarmFiredMsg{Wakeup: w, OK: ok}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshotCmd(m.deps.Snapshots),
		waitForAlarmCmd(m.deps.Alarms),
	)
}

// Update delegates to the message handlers and refreshes the bubble
// components on the model value actually returned. A deferred sync on the
// receiver would mutate a copy the runtime never sees again.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if out, ok := next.(Model); ok {
		out.syncBubbleData()
		return out, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		m.Height = typed.Height
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case "a":
			m.Palette.Active = true
			m.Palette.Input = "add "
			m.commandInput.Focus()
			m.commandInput.SetValue("add ")
			m.commandInput.CursorEnd()
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Calendar:
			m.CurrentView = ViewCalendar
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "S":
			if !m.spinnerActive {
				m.spinnerActive = true
				m.Status = StatusBar{Text: "sync started"}
				return m, tea.Batch(m.syncSpinner.Tick, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
					return SetStatusMsg{Text: "sync complete"}
				}))
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			m.persistUIState()
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed)
		case ViewToday:
			return m.handleTodayKey(typed)
		case ViewCalendar:
			return m.handleCalendarKey(typed)
		}
	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SnapshotMsg:
		if !typed.OK {
			return m, nil
		}
		m.applySnapshot(typed.Snap)
		return m, waitForSnapshotCmd(m.deps.Snapshots)
	case AlarmFiredMsg:
		if !typed.OK {
			return m, nil
		}
		title := typed.Wakeup.Payload
		if title == "" {
			title = typed.Wakeup.Key
		}
		m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s", title)}
		m.notify("Reminder", title, "info")
		return m, waitForAlarmCmd(m.deps.Alarms)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		if strings.Contains(strings.ToLower(typed.Text), "sync complete") {
			m.spinnerActive = false
		}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) applySnapshot(snap storage.Snapshot) {
	m.Snapshot = snap
	m.TodayRows = m.buildTodayRows()
	m.Calendar.Items = m.buildCalendarItems()
	m.clampCursors()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderDetailPane() + m.renderHelpIfVisible()
	case ViewToday:
		leftPane = m.renderTodayView()
		rightPane = m.renderDetailPane() + m.renderHelpIfVisible()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderHelpIfVisible()
	}
	if m.Palette.Active {
		rightPane = views.RenderCommandPalette(true, m.commandInput.View()) + "\n" + rightPane
	}

	notificationView := ""
	if len(m.Notifications) > 0 {
		n := m.Notifications[len(m.Notifications)-1]
		notificationView = strings.TrimSpace(views.RenderNotification(n.Level, n.Body))
	}
	if m.spinnerActive {
		spin := m.syncSpinner.View()
		notificationView = strings.TrimSpace(strings.Join([]string{notificationView, "sync: " + spin + " running"}, "\n"))
	}

	return views.RenderApp(views.AppData{
		Width:        m.Width,
		Header:       fmt.Sprintf("dayplan | view: %s | selected: %s", m.CurrentView, m.SelectedKey),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s tasks | %s today | %s calendar | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Today, m.Keys.Calendar, m.Keys.Help, m.Keys.Quit),
	})
}
