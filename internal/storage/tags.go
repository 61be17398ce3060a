package storage

import (
	"context"

	"dayplan/internal/model"
)

func (s *Store) CreateTag(ctx context.Context, userID string, in model.Tag) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, hidden, sort_order)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, userID, in.Name, boolInt(in.Hidden), in.Order,
	)
	if err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

func (s *Store) UpdateTag(ctx context.Context, userID string, in model.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, hidden = ?, sort_order = ?
		WHERE id = ? AND user_id = ?`,
		in.Name, boolInt(in.Hidden), in.Order, in.ID, userID,
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

func (s *Store) DeleteTag(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

// ListTags returns the user's tags in display order.
func (s *Store) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, hidden, sort_order FROM tags
		WHERE user_id = ? ORDER BY sort_order ASC, name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Tag, 0)
	for rows.Next() {
		var tag model.Tag
		var hidden int
		if scanErr := rows.Scan(&tag.ID, &tag.Name, &hidden, &tag.Order); scanErr != nil {
			return nil, scanErr
		}
		tag.Hidden = hidden == 1
		out = append(out, tag)
	}
	return out, rows.Err()
}
