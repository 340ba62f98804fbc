package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// fakeRemote records writes and fails on demand.
type fakeRemote struct {
	emailErr   error
	journalErr error

	emails  []schema.EmailEvent
	entries []schema.Entry
}

func (f *fakeRemote) WriteEmailEvent(ctx context.Context, event schema.EmailEvent) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, event)
	return nil
}

func (f *fakeRemote) WriteJournalEntry(ctx context.Context, entry schema.Entry) error {
	if f.journalErr != nil {
		return f.journalErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()

	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return queue.New(store)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunCycleDeliversInOrder(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{}
	s := New(q, remote, quietLogger())

	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{"to":"a@example.com","subject":"hi","status":"sent","timestamp":1}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.Enqueue(schema.TaskKindJournal, json.RawMessage(`{"mood":"good","content":"x","timestamp":2,"dateKey":"2026-08-28"}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{"to":"b@example.com","subject":"yo","status":"sent","timestamp":3}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats.Processed != 3 || stats.Delivered != 3 || stats.Requeued != 0 || stats.Dropped != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if q.Depth() != 0 {
		t.Errorf("expected drained queue, depth %d", q.Depth())
	}
	if len(remote.emails) != 2 || remote.emails[0].To != "a@example.com" || remote.emails[1].To != "b@example.com" {
		t.Errorf("emails delivered out of order: %v", remote.emails)
	}
	if len(remote.entries) != 1 || remote.entries[0].Content != "x" {
		t.Errorf("journal entry not delivered: %v", remote.entries)
	}
}

func TestRunCycleRequeuesFailedDelivery(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{journalErr: errors.New("connection refused")}
	s := New(q, remote, quietLogger())

	payload := json.RawMessage(`{"mood":"good","content":"x","timestamp":2,"dateKey":"2026-08-28"}`)
	original, err := q.Enqueue(schema.TaskKindJournal, payload)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats.Requeued != 1 || stats.Delivered != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Exactly one copy survives, same kind and payload, fresh timestamp.
	pending := q.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly 1 requeued task, got %d", len(pending))
	}
	if pending[0].Kind != schema.TaskKindJournal || string(pending[0].Payload) != string(payload) {
		t.Errorf("requeued task altered: %+v", pending[0])
	}
	if pending[0].EnqueuedAt < original.EnqueuedAt {
		t.Errorf("requeued EnqueuedAt went backwards: %d < %d", pending[0].EnqueuedAt, original.EnqueuedAt)
	}

	// The remote recovers; the next cycle delivers the survivor.
	remote.journalErr = nil
	stats, err = s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle failed: %v", err)
	}
	if stats.Delivered != 1 || q.Depth() != 0 {
		t.Errorf("expected recovery delivery, stats %+v depth %d", stats, q.Depth())
	}
}

func TestRunCycleFailureDoesNotAbortCycle(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{journalErr: errors.New("quota exceeded")}
	s := New(q, remote, quietLogger())

	if _, err := q.Enqueue(schema.TaskKindJournal, json.RawMessage(`{"mood":"good","content":"x","timestamp":1,"dateKey":"2026-08-28"}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`{"to":"a@example.com","subject":"hi","status":"sent","timestamp":2}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats.Delivered != 1 || stats.Requeued != 1 {
		t.Errorf("expected email delivered despite journal failure: %+v", stats)
	}
	if len(remote.emails) != 1 {
		t.Errorf("email task not attempted after earlier failure")
	}

	pending := q.Pending()
	if len(pending) != 1 || pending[0].Kind != schema.TaskKindJournal {
		t.Errorf("expected only the failed journal task pending, got %v", pending)
	}
}

func TestRunCycleDropsMalformedTask(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{}
	s := New(q, remote, quietLogger())

	// A task with no kind can never be dispatched; retrying is pointless.
	if _, err := q.Enqueue("", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats.Dropped != 1 || stats.Requeued != 0 {
		t.Errorf("expected malformed task dropped, not requeued: %+v", stats)
	}
	if q.Depth() != 0 {
		t.Errorf("dropped task still pending, depth %d", q.Depth())
	}
}

func TestRunCycleDropsUninterpretablePayload(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{}
	s := New(q, remote, quietLogger())

	if _, err := q.Enqueue(schema.TaskKindEmail, json.RawMessage(`"not an object"`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats.Dropped != 1 || stats.Requeued != 0 {
		t.Errorf("expected undecodable payload dropped, not requeued: %+v", stats)
	}
	if len(remote.emails) != 0 {
		t.Errorf("undecodable payload reached the remote: %v", remote.emails)
	}
	if q.Depth() != 0 {
		t.Errorf("dropped task still pending, depth %d", q.Depth())
	}
}

func TestRunCycleEmptyQueueIsNoop(t *testing.T) {
	q := newTestQueue(t)
	remote := &fakeRemote{}
	s := New(q, remote, quietLogger())

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if stats != (CycleStats{}) {
		t.Errorf("expected zero stats on empty queue, got %+v", stats)
	}
}
