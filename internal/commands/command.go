package commands

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd  Type = "add"
	TypeDone Type = "done"
	TypeShow Type = "show"
	TypeDue  Type = "due"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs creates a task. Due is nil when the command gave no due: token.
type AddArgs struct {
	Title string
	Due   *time.Time
	Tag   string
}

// DoneArgs toggles completion on the task matching Target (id or title
// prefix). Undo reopens instead of completing.
type DoneArgs struct {
	Target string
	Undo   bool
}

type ShowArgs struct {
	Subject string
	Tag     string
}

// DueArgs reschedules a task. When is nil for "due <target> clear".
type DueArgs struct {
	Target string
	When   *time.Time
}

type Command struct {
	Type Type
	Raw  string
	Add  *AddArgs
	Done *DoneArgs
	Show *ShowArgs
	Due  *DueArgs
}

const dateLayout = "2006-01-02"

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args, false)
	case Type("undone"):
		return parseDone(input, args, true)
	case TypeShow:
		return parseShow(input, args)
	case TypeDue:
		return parseDue(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	out := AddArgs{}
	titleWords := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "due:"):
			value := arg[4:]
			day, err := time.ParseInLocation(dateLayout, value, time.Local)
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid due date: %s", value)}
			}
			out.Due = &day
		case strings.HasPrefix(lower, "tag:"):
			out.Tag = strings.TrimSpace(arg[4:])
		default:
			titleWords = append(titleWords, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(titleWords, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseDone(raw string, args []string, undo bool) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a target"}
	}
	target := strings.TrimSpace(strings.Join(args, " "))
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: target, Undo: undo}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "today", "all", "done", "open":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown show subject: %s", subject)}
	}
	tag := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "tag:") {
			tag = strings.TrimSpace(arg[4:])
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Tag: tag}}, nil
}

func parseDue(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due requires target and date"}
	}
	target := strings.Join(args[:len(args)-1], " ")
	last := args[len(args)-1]
	if strings.EqualFold(last, "clear") {
		return Command{Type: TypeDue, Raw: raw, Due: &DueArgs{Target: target}}, nil
	}
	day, err := time.ParseInLocation(dateLayout, last, time.Local)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date: %s", last)}
	}
	return Command{Type: TypeDue, Raw: raw, Due: &DueArgs{Target: target, When: &day}}, nil
}
