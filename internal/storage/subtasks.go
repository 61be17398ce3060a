package storage

import (
	"context"
	"database/sql"
	"errors"

	"dayplan/internal/model"
)

const subTaskColumns = `id, main_task_id, user_id, title, description,
	start_date, end_date, due_date, is_completed, completed_at, created_at`

func (s *Store) CreateSubTask(ctx context.Context, userID string, in model.SubTask) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subtasks (`+subTaskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.MainTaskID, userID, in.Title, in.Description,
		nullTime(in.StartDate), nullTime(in.EndDate), nullTime(in.DueDate),
		boolInt(in.IsCompleted), nullTime(in.CompletedAt), mustTime(in.CreatedAt),
	)
	if err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

func (s *Store) GetSubTask(ctx context.Context, userID, id string) (model.SubTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subTaskColumns+` FROM subtasks WHERE id = ? AND user_id = ?`, id, userID)
	sub, err := scanSubTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SubTask{}, ErrNotFound
		}
		return model.SubTask{}, err
	}
	return sub, nil
}

func (s *Store) UpdateSubTask(ctx context.Context, userID string, in model.SubTask) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE subtasks
		SET title = ?, description = ?, start_date = ?, end_date = ?, due_date = ?,
			is_completed = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		in.Title, in.Description,
		nullTime(in.StartDate), nullTime(in.EndDate), nullTime(in.DueDate),
		boolInt(in.IsCompleted), nullTime(in.CompletedAt),
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

func (s *Store) DeleteSubTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

// ListSubTasks returns all of the user's subtasks grouped by main task id.
func (s *Store) ListSubTasks(ctx context.Context, userID string) (map[string][]model.SubTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subTaskColumns+` FROM subtasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.SubTask)
	for rows.Next() {
		sub, scanErr := scanSubTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out[sub.MainTaskID] = append(out[sub.MainTaskID], sub)
	}
	return out, rows.Err()
}

// WriteSubTaskFields applies a partial field update to a subtask. Completion
// writes for subtasks never touch dates, so only isCompleted and completedAt
// are accepted here.
func (s *Store) WriteSubTaskFields(ctx context.Context, subTaskID string, fields map[string]any) error {
	if _, ok := fields["dueDate"]; ok {
		return errors.New("storage: subtask field update cannot set dueDate")
	}
	set, args, err := fieldAssignments(fields)
	if err != nil {
		return err
	}
	args = append(args, subTaskID)
	res, err := s.db.ExecContext(ctx, `UPDATE subtasks SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	if userID, lookErr := s.subTaskOwner(ctx, subTaskID); lookErr == nil {
		s.broadcast(ctx, userID)
	}
	return nil
}

func (s *Store) subTaskOwner(ctx context.Context, subTaskID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM subtasks WHERE id = ?`, subTaskID).Scan(&userID)
	return userID, err
}

func scanSubTask(s scanner) (model.SubTask, error) {
	var out model.SubTask
	var userID string
	var start, end, due, completed sql.NullString
	var isCompleted int
	var created string
	if err := s.Scan(
		&out.ID, &out.MainTaskID, &userID, &out.Title, &out.Description,
		&start, &end, &due, &isCompleted, &completed, &created,
	); err != nil {
		return model.SubTask{}, err
	}
	var err error
	if out.StartDate, err = parseNullableTime(start); err != nil {
		return model.SubTask{}, err
	}
	if out.EndDate, err = parseNullableTime(end); err != nil {
		return model.SubTask{}, err
	}
	if out.DueDate, err = parseNullableTime(due); err != nil {
		return model.SubTask{}, err
	}
	if out.CompletedAt, err = parseNullableTime(completed); err != nil {
		return model.SubTask{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.SubTask{}, err
	}
	out.IsCompleted = isCompleted == 1
	return out, nil
}
