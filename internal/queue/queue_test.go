package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

func newTestQueue(t *testing.T) (*Queue, *localstore.Store) {
	t.Helper()

	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return New(store), store
}

func TestEnqueueThenDrain(t *testing.T) {
	q, _ := newTestQueue(t)

	payload := json.RawMessage(`{"mood":"good","content":"x","timestamp":1}`)
	task, err := q.Enqueue(schema.TaskKindJournal, payload)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if task.EnqueuedAt == 0 {
		t.Error("expected EnqueuedAt to be stamped")
	}

	pending := q.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
	if pending[0].Kind != schema.TaskKindJournal {
		t.Errorf("expected journal task, got %s", pending[0].Kind)
	}
	if string(pending[0].Payload) != string(payload) {
		t.Errorf("payload mismatch: %s", pending[0].Payload)
	}

	if err := q.Advance(pending[0].Seq); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if got := q.Pending(); len(got) != 0 {
		t.Errorf("expected empty queue after advance, got %d tasks", len(got))
	}
	if q.Depth() != 0 {
		t.Errorf("expected depth 0, got %d", q.Depth())
	}
}

func TestPendingSurvivesReopen(t *testing.T) {
	q, store := newTestQueue(t)

	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{"to":"a@example.com"}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// A crash between snapshot and advance must re-deliver: reading the
	// queue is non-destructive.
	_ = q.Pending()

	reopened := New(store)
	pending := reopened.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected task to survive reopen, got %d", len(pending))
	}
	if pending[0].Kind != schema.TaskKindEmail {
		t.Errorf("expected email task, got %s", pending[0].Kind)
	}
}

func TestAdvanceIsMonotonic(t *testing.T) {
	q, _ := newTestQueue(t)

	for i := 0; i < 3; i++ {
		if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{}`)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	if err := q.Advance(1); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if q.Depth() != 1 {
		t.Errorf("expected depth 1 after consuming seq 0..1, got %d", q.Depth())
	}

	// Advancing backwards is a no-op.
	if err := q.Advance(0); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if q.Depth() != 1 {
		t.Errorf("backwards advance moved the cursor: depth %d", q.Depth())
	}
}

func TestSequencesSurviveCompaction(t *testing.T) {
	q, _ := newTestQueue(t)

	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	pending := q.Pending()
	if err := q.Advance(pending[0].Seq); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// The log compacted; new tasks continue the sequence.
	task, err := q.Enqueue(schema.TaskKindJournal, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if task.Seq != pending[0].Seq+1 {
		t.Errorf("expected seq %d after compaction, got %d", pending[0].Seq+1, task.Seq)
	}
	if q.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", q.Depth())
	}
}

func TestLegacyArrayLayoutAdopted(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	// Older clients persisted the queue as a bare task array.
	legacy := []schema.Task{
		{Kind: schema.TaskKindEmail, Payload: json.RawMessage(`{"to":"a@example.com"}`), EnqueuedAt: 1},
		{Kind: schema.TaskKindJournal, Payload: json.RawMessage(`{"mood":"good"}`), EnqueuedAt: 2},
	}
	if err := store.Save(StateKey, legacy); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	q := New(store)
	pending := q.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 adopted tasks, got %d", len(pending))
	}
	if pending[0].Kind != schema.TaskKindEmail || pending[1].Kind != schema.TaskKindJournal {
		t.Errorf("legacy order not preserved: %v", pending)
	}
}

func TestCorruptStateResetsToEmpty(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Save(StateKey, "garbage"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	q := New(store)
	if q.Depth() != 0 {
		t.Errorf("expected empty queue over corrupt state, got depth %d", q.Depth())
	}
	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Enqueue over corrupt state failed: %v", err)
	}
	if q.Depth() != 1 {
		t.Errorf("expected depth 1 after recovery write, got %d", q.Depth())
	}
}

func TestRequeueStampsFreshEnqueuedAt(t *testing.T) {
	q, _ := newTestQueue(t)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	current := base
	q.now = func() time.Time { return current }

	first, err := q.Enqueue(schema.TaskKindJournal, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	current = base.Add(time.Minute)
	second, err := q.Enqueue(first.Kind, first.Payload)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if second.EnqueuedAt <= first.EnqueuedAt {
		t.Errorf("expected fresh EnqueuedAt on re-enqueue: %d vs %d", second.EnqueuedAt, first.EnqueuedAt)
	}
}
