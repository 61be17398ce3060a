package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID     string
	Title  string
	Done   bool
	Due    string
	Window string
	Tags   []string
	Alarm  bool
}

type TasksPanelData struct {
	ListView   string
	Rows       []TaskRowData
	SelectedID string
	FilterTag  string
	Subject    string
}

type TodayRowData struct {
	Key     string
	Title   string
	Done    bool
	Kind    string
	Due     string
	Overdue bool
}

type TodayPanelData struct {
	ListView   string
	Rows       []TodayRowData
	SelectedID string
	Date       string
}

type AgendaDayData struct {
	Date  string
	Items []AgendaItemData
}

type AgendaItemData struct {
	ID    string
	Title string
	Done  bool
}

type CalendarPanelData struct {
	Month      string
	Grid       string
	TableView  string
	Days       []AgendaDayData
	SelectedID string
}

type DetailData struct {
	Title        string
	Due          string
	Window       string
	Tags         []string
	AlarmEnabled bool
	MarkdownView string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks")
	if data.Subject != "" && data.Subject != "all" {
		b.WriteString(" [" + data.Subject + "]")
	}
	if data.FilterTag != "" {
		b.WriteString(" tag:" + data.FilterTag)
	}
	b.WriteString(":\n")
	b.WriteString("actions: [j/k]move [space]toggle [a]add [/]cmd\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no tasks)")
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row, data.SelectedID) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func renderTaskRow(row TaskRowData, selectedID string) string {
	cursor := " "
	if row.ID == selectedID {
		cursor = ">"
	}
	box := "[ ]"
	if row.Done {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s %s", cursor, box, row.Title)
	if row.Window != "" {
		line += " (" + row.Window + ")"
	} else if row.Due != "" {
		line += " due:" + row.Due
	}
	if row.Alarm {
		line += " !"
	}
	if len(row.Tags) > 0 {
		line += " #" + strings.Join(row.Tags, " #")
	}
	return line
}

func RenderTodayPanel(data TodayPanelData) string {
	overdue := make([]TodayRowData, 0)
	due := make([]TodayRowData, 0)
	for _, row := range data.Rows {
		if row.Overdue {
			overdue = append(overdue, row)
			continue
		}
		due = append(due, row)
	}

	var b strings.Builder
	b.WriteString("today " + data.Date + ":\n")
	b.WriteString("actions: [j/k]move [space]toggle [1]tasks [3]calendar\n")
	b.WriteString(data.ListView + "\n")
	renderTodaySection(&b, "Overdue", overdue, data.SelectedID)
	renderTodaySection(&b, "Due today", due, data.SelectedID)
	return strings.TrimSpace(b.String())
}

func renderTodaySection(b *strings.Builder, title string, rows []TodayRowData, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(rows) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, row := range rows {
		cursor := " "
		if row.Key == selectedID {
			cursor = ">"
		}
		box := "[ ]"
		if row.Done {
			box = "[x]"
		}
		indent := ""
		if row.Kind == "sub" {
			indent = "  - "
		}
		b.WriteString(fmt.Sprintf("%s %s %s%s", cursor, box, indent, row.Title))
		if row.Due != "" {
			b.WriteString(" due:" + row.Due)
		}
		b.WriteString("\n")
	}
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar " + data.Month + ":\n")
	b.WriteString("actions: [h/l]month [t]now [j/k]agenda\n")
	b.WriteString(data.Grid + "\n")
	b.WriteString(data.TableView + "\n")
	if len(data.Days) == 0 {
		b.WriteString("(agenda empty)")
		return strings.TrimSpace(b.String())
	}
	for _, day := range data.Days {
		b.WriteString("\n" + day.Date + ":\n")
		for _, item := range day.Items {
			cursor := " "
			if item.ID == data.SelectedID {
				cursor = ">"
			}
			box := "[ ]"
			if item.Done {
				box = "[x]"
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, box, item.Title))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderDetailPane(data DetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString("title: " + data.Title + "\n")
	if data.Window != "" {
		b.WriteString("window: " + data.Window + "\n")
	}
	if data.Due != "" {
		b.WriteString("due: " + data.Due + "\n")
	}
	if len(data.Tags) > 0 {
		b.WriteString("tags: " + strings.Join(data.Tags, ",") + "\n")
	}
	if data.AlarmEnabled {
		b.WriteString("reminder: on\n")
	}
	if data.MarkdownView != "" {
		b.WriteString("\n" + data.MarkdownView)
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
