package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"dayplan/internal/model"
)

// visibleTasks applies the Tasks view filter to the snapshot in input
// order.
func (m Model) visibleTasks() []model.Task {
	tagID := m.filterTagID()
	out := make([]model.Task, 0, len(m.Snapshot.Tasks))
	for _, task := range m.Snapshot.Tasks {
		switch m.Filter.Subject {
		case "open":
			if task.IsCompleted {
				continue
			}
		case "done":
			if !task.IsCompleted {
				continue
			}
		}
		if m.Filter.Tag != "" && (tagID == "" || !task.HasTag(tagID)) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func (m Model) filterTagID() string {
	if m.Filter.Tag == "" {
		return ""
	}
	for _, tag := range m.Snapshot.Tags {
		if tag.Name == m.Filter.Tag {
			return tag.ID
		}
	}
	return ""
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.visibleTasks()
	switch msg.String() {
	case "up", "k":
		if m.TasksCursor > 0 {
			m.TasksCursor--
		}
	case "down", "j":
		if m.TasksCursor < len(tasks)-1 {
			m.TasksCursor++
		}
	case " ":
		if task, ok := m.currentTask(); ok {
			return m.toggleTask(task)
		}
	}
	m.syncSelectedToTasksCursor()
	return m, nil
}

func (m *Model) syncSelectedToTasksCursor() {
	if task, ok := m.currentTask(); ok {
		m.SelectedKey = task.ID
	}
}

func (m Model) currentTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if m.TasksCursor < 0 || m.TasksCursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.TasksCursor], true
}

func (m Model) toggleTask(task model.Task) (tea.Model, tea.Cmd) {
	if m.deps.Toggler == nil {
		return m, nil
	}
	updated, err := m.deps.Toggler.Toggle(context.Background(), task, !task.IsCompleted)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	verb := "completed"
	if !updated.IsCompleted {
		verb = "reopened"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", verb, updated.Title)}
	return m, nil
}

func (m Model) toggleSub(sub model.SubTask) (tea.Model, tea.Cmd) {
	if m.deps.Toggler == nil {
		return m, nil
	}
	updated, err := m.deps.Toggler.ToggleSub(context.Background(), sub, !sub.IsCompleted)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	verb := "completed"
	if !updated.IsCompleted {
		verb = "reopened"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", verb, updated.Title)}
	return m, nil
}
