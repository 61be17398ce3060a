package engine

import (
	"context"
	"errors"

	"dayplan/internal/complete"
	"dayplan/internal/storage"
)

// StoreWriter adapts the document store to the reconciler's write
// interface. An unknown id is a permanent failure: retrying a field write
// against a deleted document can never succeed, so the outbox entry must
// be dropped rather than replayed forever.
type StoreWriter struct {
	Store *storage.Store
}

func (w StoreWriter) WriteTaskFields(ctx context.Context, taskID string, fields map[string]any) error {
	return classifyWriteErr(w.Store.WriteTaskFields(ctx, taskID, fields))
}

func (w StoreWriter) WriteSubTaskFields(ctx context.Context, subTaskID string, fields map[string]any) error {
	return classifyWriteErr(w.Store.WriteSubTaskFields(ctx, subTaskID, fields))
}

func classifyWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return complete.Permanent(err)
	}
	return err
}
