package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"dayplan/internal/commands"
	"dayplan/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.runCommand(input)
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	next := &m
	res, err := commands.Execute(cmd, commands.Handlers{
		Add:  next.handleAddCommand,
		Done: next.handleDoneCommand,
		Show: next.handleShowCommand,
		Due:  next.handleDueCommand,
	})
	if err != nil {
		next.Status = StatusBar{Text: err.Error(), IsError: true}
		return *next, nil
	}
	if res.Message != "" {
		next.Status = StatusBar{Text: res.Message}
	}
	return *next, nil
}

func (m *Model) handleAddCommand(args commands.AddArgs) (commands.Result, error) {
	if m.deps.Store == nil {
		return commands.Result{}, fmt.Errorf("store not available")
	}
	ctx := context.Background()
	task := model.Task{
		ID:        uuid.NewString(),
		Title:     args.Title,
		DueDate:   args.Due,
		CreatedAt: m.deps.Now(),
	}
	if args.Tag != "" {
		tagID, err := m.ensureTag(ctx, args.Tag)
		if err != nil {
			return commands.Result{}, err
		}
		task.TagIDs = []string{tagID}
	}
	if err := m.deps.Store.CreateTask(ctx, m.deps.UserID, task); err != nil {
		return commands.Result{}, err
	}
	m.SelectedKey = task.ID
	return commands.Result{Message: "added: " + task.Title}, nil
}

func (m *Model) ensureTag(ctx context.Context, name string) (string, error) {
	for _, tag := range m.Snapshot.Tags {
		if strings.EqualFold(tag.Name, name) {
			return tag.ID, nil
		}
	}
	tag := model.Tag{ID: uuid.NewString(), Name: name, Order: len(m.Snapshot.Tags)}
	if err := m.deps.Store.CreateTag(ctx, m.deps.UserID, tag); err != nil {
		return "", err
	}
	return tag.ID, nil
}

func (m *Model) handleDoneCommand(args commands.DoneArgs) (commands.Result, error) {
	task, err := m.findTask(args.Target)
	if err != nil {
		return commands.Result{}, err
	}
	if m.deps.Toggler == nil {
		return commands.Result{}, fmt.Errorf("toggler not available")
	}
	updated, err := m.deps.Toggler.Toggle(context.Background(), task, !args.Undo)
	if err != nil {
		return commands.Result{}, err
	}
	verb := "completed"
	if !updated.IsCompleted {
		verb = "reopened"
	}
	return commands.Result{Message: fmt.Sprintf("%s: %s", verb, updated.Title)}, nil
}

func (m *Model) handleShowCommand(args commands.ShowArgs) (commands.Result, error) {
	switch args.Subject {
	case "today":
		m.CurrentView = ViewToday
	default:
		m.CurrentView = ViewTasks
		m.Filter.Subject = args.Subject
		m.TasksCursor = 0
	}
	m.Filter.Tag = args.Tag
	return commands.Result{Message: "showing " + args.Subject}, nil
}

func (m *Model) handleDueCommand(args commands.DueArgs) (commands.Result, error) {
	if m.deps.Store == nil {
		return commands.Result{}, fmt.Errorf("store not available")
	}
	task, err := m.findTask(args.Target)
	if err != nil {
		return commands.Result{}, err
	}
	task.DueDate = args.When
	if err := m.deps.Store.UpdateTask(context.Background(), m.deps.UserID, task); err != nil {
		return commands.Result{}, err
	}
	if args.When == nil {
		return commands.Result{Message: "due date cleared: " + task.Title}, nil
	}
	return commands.Result{Message: fmt.Sprintf("due %s: %s", args.When.Format("2006-01-02"), task.Title)}, nil
}

// findTask resolves a command target against the snapshot: exact id match
// first, then unique case-insensitive title prefix.
func (m *Model) findTask(target string) (model.Task, error) {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return model.Task{}, fmt.Errorf("empty target")
	}
	var matches []model.Task
	for _, task := range m.Snapshot.Tasks {
		if task.ID == target {
			return task, nil
		}
		if strings.HasPrefix(strings.ToLower(task.Title), needle) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", target)
	default:
		return model.Task{}, fmt.Errorf("%d tasks match %q", len(matches), target)
	}
}
