package complete

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dayplan/internal/model"
	"dayplan/internal/outbox"
)

// PermanentError marks a remote failure that will never succeed on retry
// (permission denied, unknown id). Flush drops outbox entries that fail
// permanently instead of retrying them forever.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("permanent: %v", e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// FieldWriter issues asynchronous-style field updates against the remote
// store. Implementations must be safe to call after the originating UI
// context is gone.
type FieldWriter interface {
	WriteTaskFields(ctx context.Context, taskID string, fields map[string]any) error
	WriteSubTaskFields(ctx context.Context, subTaskID string, fields map[string]any) error
}

// Reconciler applies completion toggles optimistically: the outbox entry is
// made durable before the remote write is attempted, so a crash between the
// two cannot lose the user's intent. Mutations of one user's outbox are
// serialized by a per-user mutex.
type Reconciler struct {
	store  outbox.Store
	writer FieldWriter
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReconciler(store outbox.Store, writer FieldWriter) *Reconciler {
	return &Reconciler{
		store:  store,
		writer: writer,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *Reconciler) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

// ToggleTask flips completion for a main task. The returned task reflects
// the local optimistic state regardless of remote outcome; the error is
// non-nil only when the outbox itself cannot be made durable. A transient
// remote failure leaves the entry queued for the next Flush, a permanent one
// drops it after the single attempt.
func (r *Reconciler) ToggleTask(ctx context.Context, userID string, task model.Task, done bool) (model.Task, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	res := Toggle(task, done, r.now())

	pending, err := r.store.Load(userID)
	if err != nil {
		return res.Task, fmt.Errorf("load outbox: %w", err)
	}
	pending[res.Pending.TaskID] = res.Pending
	if err := r.store.Save(userID, pending); err != nil {
		return res.Task, fmt.Errorf("enqueue outbox: %w", err)
	}

	writeErr := r.writer.WriteTaskFields(ctx, task.ID, res.Fields)
	if writeErr == nil || IsPermanent(writeErr) {
		delete(pending, res.Pending.TaskID)
		if err := r.store.Save(userID, pending); err != nil {
			return res.Task, fmt.Errorf("dequeue outbox: %w", err)
		}
	}
	return res.Task, nil
}

// ToggleSubTask flips completion for a subtask. Subtask toggles skip the
// outbox; a lost write re-triggers naturally the next time the user touches
// the row.
func (r *Reconciler) ToggleSubTask(ctx context.Context, sub model.SubTask, done bool) (model.SubTask, error) {
	updated, fields := ToggleSub(sub, done, r.now())
	if err := r.writer.WriteSubTaskFields(ctx, sub.ID, fields); err != nil {
		return updated, fmt.Errorf("write subtask fields: %w", err)
	}
	return updated, nil
}

// Flush replays the user's pending writes, one attempt each. Entries are
// removed on success or permanent failure and retained on transient failure;
// the surviving set is persisted once at the end.
func (r *Reconciler) Flush(ctx context.Context, userID string) (int, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	pending, err := r.store.Load(userID)
	if err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	attempted := 0
	for taskID, w := range pending {
		attempted++
		writeErr := r.writer.WriteTaskFields(ctx, taskID, PendingFields(w))
		if writeErr == nil || IsPermanent(writeErr) {
			delete(pending, taskID)
		}
	}
	if err := r.store.Save(userID, pending); err != nil {
		return attempted, fmt.Errorf("save outbox: %w", err)
	}
	return attempted, nil
}
