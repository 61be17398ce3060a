package alarm

import (
	"container/heap"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("alarm: invalid trigger time")
	ErrEmptyKey           = errors.New("alarm: key is required")
	ErrStopped            = errors.New("alarm: engine stopped")
)

// Wakeup is a fired local alarm. Payload carries the notification text
// snapshotted at schedule time.
type Wakeup struct {
	Key       string
	Payload   string
	TriggerAt time.Time
}

type queueItem struct {
	wakeup Wakeup
	gen    uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].wakeup.TriggerAt.Before(pq[j].wakeup.TriggerAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine is an in-process keyed alarm facility: a min-heap of pending
// wake-ups drained by a single timer loop. Scheduling an already-armed key
// replaces its trigger; Cancel disarms it. Superseded heap entries are
// dropped lazily via a per-key generation counter.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	armed   map[string]uint64
	out     chan Wakeup
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		armed:  make(map[string]uint64),
		out:    make(chan Wakeup, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C delivers fired wake-ups. The channel is closed when the engine stops.
func (e *Engine) C() <-chan Wakeup {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule arms (or re-arms) the wake-up for key at triggerAt.
func (e *Engine) Schedule(key string, triggerAt time.Time, payload string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if triggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	gen := e.armed[key] + 1
	e.armed[key] = gen
	heap.Push(&e.queue, queueItem{
		wakeup: Wakeup{Key: key, Payload: payload, TriggerAt: triggerAt},
		gen:    gen,
	})
	e.signalWakeup()
	return nil
}

// Cancel disarms the wake-up for key. Cancelling an unknown key is a no-op.
func (e *Engine) Cancel(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.armed[key]; !ok {
		return
	}
	delete(e.armed, key)
	e.signalWakeup()
}

// Armed reports whether a wake-up is currently pending for key.
func (e *Engine) Armed(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.armed[key]
	return ok
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, w := range due {
				select {
				case e.out <- w:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the earliest live entry, discarding cancelled or superseded
// ones along the way.
func (e *Engine) peek() (Wakeup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.armed[head.wakeup.Key] == head.gen {
			return head.wakeup, true
		}
		heap.Pop(&e.queue)
	}
	return Wakeup{}, false
}

func (e *Engine) popDue(now time.Time) []Wakeup {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Wakeup, 0)
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.armed[head.wakeup.Key] != head.gen {
			heap.Pop(&e.queue)
			continue
		}
		if head.wakeup.TriggerAt.After(now) {
			break
		}
		heap.Pop(&e.queue)
		delete(e.armed, head.wakeup.Key)
		out = append(out, head.wakeup)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
