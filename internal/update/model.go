package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"dayplan/internal/alarm"
	"dayplan/internal/model"
	"dayplan/internal/storage"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewToday    View = "Today"
	ViewCalendar View = "Calendar"
)

// FilterState narrows the Tasks view. Subject is one of all/open/done.
type FilterState struct {
	Subject string
	Tag     string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Today    string
	Calendar string
	Help     string
	Quit     string
}

// TaskToggler flips completion through the reconciliation pipeline. The
// session satisfies it; tests swap in a fake.
type TaskToggler interface {
	Toggle(ctx context.Context, task model.Task, done bool) (model.Task, error)
	ToggleSub(ctx context.Context, sub model.SubTask, done bool) (model.SubTask, error)
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// TodayRow is one line in the Today view: either a due main task or a due
// subtask. Key carries the sub: namespace for subtasks so the cursor can
// address both kinds.
type TodayRow struct {
	Key     string
	Kind    string
	Task    model.Task
	Sub     model.SubTask
	Overdue bool
}

type CalendarState struct {
	FocusMonth time.Time
	Items      []model.Task
	Cursor     int
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SnapshotMsg struct {
	Snap storage.Snapshot
	OK   bool
}

type AlarmFiredMsg struct {
	Wakeup alarm.Wakeup
	OK     bool
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// Deps wires the TUI to the rest of the app. Snapshots and Alarms may be
// nil in tests; the corresponding listeners simply stay idle.
type Deps struct {
	UserID         string
	Store          *storage.Store
	Toggler        TaskToggler
	Snapshots      <-chan storage.Snapshot
	Alarms         <-chan alarm.Wakeup
	Notifier       DesktopNotifier
	DesktopEnabled bool
	StatePath      string
	Now            func() time.Time
}

type Model struct {
	CurrentView    View
	SelectedKey    string
	Filter         FilterState
	Snapshot       storage.Snapshot
	TasksCursor    int
	TodayRows      []TodayRow
	TodayCursor    int
	Calendar       CalendarState
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	Width          int
	Height         int

	deps Deps

	// Bubble components used for rich TUI controls
	tasksList     list.Model
	todayList     list.Model
	calendarTable table.Model
	commandInput  textinput.Model
	detailView    viewport.Model
	syncSpinner   spinner.Model
	helpModel     help.Model
	spinnerActive bool
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

func NewModel(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = NoopDesktopNotifier{}
	}
	m := Model{
		CurrentView: ViewTasks,
		Filter:      FilterState{Subject: "all"},
		Calendar: CalendarState{
			FocusMonth: monthStart(deps.Now()),
		},
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Today:    "2",
			Calendar: "3",
			Help:     "?",
			Quit:     "q",
		},
		deps: deps,
	}
	if state, err := loadUIState(deps.StatePath); err == nil {
		if isKnownView(View(state.LastView)) {
			m.CurrentView = View(state.LastView)
		}
		m.SelectedKey = state.SelectedKey
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.deps.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.deps.DesktopEnabled && m.deps.Notifier != nil {
		_ = m.deps.Notifier.Send(n)
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewToday, ViewCalendar:
		return true
	default:
		return false
	}
}

func monthStart(now time.Time) time.Time {
	y, mo, _ := now.Date()
	return time.Date(y, mo, 1, 0, 0, 0, 0, now.Location())
}
