package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dayplan/internal/model"
)

const taskColumns = `id, user_id, title, description, start_date, end_date, due_date,
	is_completed, completed_at, manual_schedule, tag_ids, alarm_enabled, main_color, created_at`

func (s *Store) CreateTask(ctx context.Context, userID string, in model.Task) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, userID, in.Title, in.Description,
		nullTime(in.StartDate), nullTime(in.EndDate), nullTime(in.DueDate),
		boolInt(in.IsCompleted), nullTime(in.CompletedAt), boolInt(in.ManualSchedule),
		joinTagIDs(in.TagIDs), boolInt(in.AlarmEnabled), in.MainColor, mustTime(in.CreatedAt),
	)
	if err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return model.RepairLegacySchedule(task), nil
}

func (s *Store) UpdateTask(ctx context.Context, userID string, in model.Task) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, start_date = ?, end_date = ?, due_date = ?,
			is_completed = ?, completed_at = ?, manual_schedule = ?, tag_ids = ?,
			alarm_enabled = ?, main_color = ?
		WHERE id = ? AND user_id = ?`,
		in.Title, in.Description,
		nullTime(in.StartDate), nullTime(in.EndDate), nullTime(in.DueDate),
		boolInt(in.IsCompleted), nullTime(in.CompletedAt), boolInt(in.ManualSchedule),
		joinTagIDs(in.TagIDs), boolInt(in.AlarmEnabled), in.MainColor,
		in.ID, userID,
	)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

// DeleteTask removes the task; its subtasks go with it via the cascade on
// subtasks.main_task_id.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

// ListTasks returns the user's tasks in creation order, legacy-repaired.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, model.RepairLegacySchedule(task))
	}
	return out, rows.Err()
}

// WriteTaskFields applies a partial field update, the remote-store write
// shape used by completion reconciliation. Unknown field names are rejected;
// an unknown task id reports ErrNotFound.
func (s *Store) WriteTaskFields(ctx context.Context, taskID string, fields map[string]any) error {
	set, args, err := fieldAssignments(fields)
	if err != nil {
		return err
	}
	args = append(args, taskID)
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	if userID, lookErr := s.taskOwner(ctx, taskID); lookErr == nil {
		s.broadcast(ctx, userID)
	}
	return nil
}

func (s *Store) taskOwner(ctx context.Context, taskID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM tasks WHERE id = ?`, taskID).Scan(&userID)
	return userID, err
}

var fieldColumns = map[string]string{
	"isCompleted": "is_completed",
	"completedAt": "completed_at",
	"dueDate":     "due_date",
}

func fieldAssignments(fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, errors.New("storage: empty field update")
	}
	set := ""
	args := make([]any, 0, len(fields))
	for _, name := range []string{"isCompleted", "completedAt", "dueDate"} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if set != "" {
			set += ", "
		}
		set += fieldColumns[name] + " = ?"
		args = append(args, fieldValue(value))
	}
	if len(args) != len(fields) {
		return "", nil, fmt.Errorf("storage: unsupported field in update: %v", fields)
	}
	return set, args, nil
}

func fieldValue(v any) any {
	switch typed := v.(type) {
	case bool:
		return boolInt(typed)
	case *time.Time:
		return nullTime(typed)
	case time.Time:
		return mustTime(typed)
	default:
		return v
	}
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var userID string
	var start, end, due, completed sql.NullString
	var isCompleted, manual, alarm int
	var tagIDs, created string
	if err := s.Scan(
		&out.ID, &userID, &out.Title, &out.Description,
		&start, &end, &due, &isCompleted, &completed, &manual,
		&tagIDs, &alarm, &out.MainColor, &created,
	); err != nil {
		return model.Task{}, err
	}
	var err error
	if out.StartDate, err = parseNullableTime(start); err != nil {
		return model.Task{}, err
	}
	if out.EndDate, err = parseNullableTime(end); err != nil {
		return model.Task{}, err
	}
	if out.DueDate, err = parseNullableTime(due); err != nil {
		return model.Task{}, err
	}
	if out.CompletedAt, err = parseNullableTime(completed); err != nil {
		return model.Task{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.Task{}, err
	}
	out.IsCompleted = isCompleted == 1
	out.ManualSchedule = manual == 1
	out.AlarmEnabled = alarm == 1
	out.TagIDs = splitTagIDs(tagIDs)
	return out, nil
}
