// Package queue implements the durable pending-write queue.
//
// The queue is an append-only log of tasks with a durable consumed-up-to
// cursor. Consumers snapshot the pending suffix, process tasks in order,
// and advance the cursor per task. Because the cursor only moves after a
// task has been handled (delivered, re-enqueued, or deliberately dropped),
// a crash mid-cycle re-delivers the unhandled tasks on the next cycle
// instead of losing them.
//
// An earlier layout persisted the queue as a bare task array that was
// destructively drained; that layout is still read for migration.
package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// StateKey is the localstore key the queue persists under.
const StateKey = "fc_sync_queue"

// state is the persisted queue layout.
//
// Base is the absolute sequence number of Tasks[0]; Cursor is the absolute
// sequence number of the next unconsumed task. Sequence numbers survive
// compaction, so a consumer holding a snapshot can still advance correctly
// after the log has been compacted underneath it.
type state struct {
	Base   int64         `json:"base"`
	Cursor int64         `json:"cursor"`
	Tasks  []schema.Task `json:"tasks"`
}

// Queue is a durable FIFO of pending remote writes.
//
// All methods are safe for concurrent use within one process.
type Queue struct {
	store *localstore.Store

	mu  sync.Mutex
	now func() time.Time
}

// New creates a queue backed by store.
func New(store *localstore.Store) *Queue {
	return &Queue{
		store: store,
		now:   time.Now,
	}
}

// load reads the persisted state, falling back to the legacy bare-array
// layout, and finally to an empty queue. Corrupt state is discarded; the
// next persist overwrites it.
func (q *Queue) load() state {
	var st state
	switch q.store.Load(StateKey, &st) {
	case localstore.StatusOK:
		if st.Cursor < st.Base {
			st.Cursor = st.Base
		}
		return st
	case localstore.StatusMissing:
		return state{}
	}

	// Legacy layout: a plain task array, fully unconsumed.
	var legacy []schema.Task
	if q.store.Load(StateKey, &legacy) == localstore.StatusOK {
		return state{Tasks: legacy}
	}
	return state{}
}

// Enqueue appends a task for kind with the given payload.
//
// EnqueuedAt is always stamped with the current time, including when a
// task is re-enqueued after a failed delivery: the original enqueue time
// is not preserved across cycles.
func (q *Queue) Enqueue(kind schema.TaskKind, payload json.RawMessage) (schema.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := q.load()
	task := schema.Task{
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: schema.Millis(q.now()),
		Seq:        st.Base + int64(len(st.Tasks)),
	}
	st.Tasks = append(st.Tasks, task)

	if err := q.store.Save(StateKey, st); err != nil {
		return schema.Task{}, fmt.Errorf("failed to persist queue: %w", err)
	}
	return task, nil
}

// Pending returns a snapshot of the unconsumed tasks in enqueue order,
// with sequence numbers assigned.
func (q *Queue) Pending() []schema.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := q.load()
	start := st.Cursor - st.Base
	if start < 0 || start > int64(len(st.Tasks)) {
		return nil
	}

	pending := make([]schema.Task, 0, int64(len(st.Tasks))-start)
	for i := start; i < int64(len(st.Tasks)); i++ {
		task := st.Tasks[i]
		task.Seq = st.Base + i
		pending = append(pending, task)
	}
	return pending
}

// Advance durably marks tasks consumed through seq (inclusive).
//
// Advancing backwards is a no-op. Once every task is consumed the log is
// compacted to an empty list, carrying the sequence counter forward.
func (q *Queue) Advance(seq int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := q.load()
	if seq+1 <= st.Cursor {
		return nil
	}
	st.Cursor = seq + 1
	if end := st.Base + int64(len(st.Tasks)); st.Cursor > end {
		st.Cursor = end
	}

	if st.Cursor == st.Base+int64(len(st.Tasks)) {
		st.Base = st.Cursor
		st.Tasks = nil
	}

	if err := q.store.Save(StateKey, st); err != nil {
		return fmt.Errorf("failed to persist queue cursor: %w", err)
	}
	return nil
}

// Depth returns the number of unconsumed tasks.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := q.load()
	return int(st.Base + int64(len(st.Tasks)) - st.Cursor)
}

// Cursor returns the absolute sequence number of the next unconsumed task.
func (q *Queue) Cursor() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.load().Cursor
}
