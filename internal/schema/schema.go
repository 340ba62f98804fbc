// Package schema provides the persisted record types for the feeling-care
// offline state: email events, daily journal entries, and pending sync tasks.
//
// All records carry an epoch-millisecond timestamp. The persisted JSON
// layouts are shared with the FeelingCare web client, so field names and
// timestamp encoding must not change without coordinating both sides.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskKind identifies which remote write a pending task maps to.
type TaskKind string

const (
	// TaskKindEmail replays an outbound-email activity record.
	TaskKindEmail TaskKind = "email"

	// TaskKindJournal replays a daily journal entry.
	TaskKindJournal TaskKind = "journal"
)

// EmailEvent records one outbound email attempt.
//
// Events are append-only: once written they are never mutated. Identity is
// positional; the log keeps insertion order, most recent first.
type EmailEvent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Status  string `json:"status"` // sent, failed, queued

	// Timestamp is epoch milliseconds. Zero means "stamp at insert time".
	Timestamp int64 `json:"timestamp"`
}

// Entry is one daily journal entry.
//
// At most one entry exists per DateKey in the persisted log; a newer write
// for the same calendar day replaces the older one in place.
type Entry struct {
	Mood    string `json:"mood"`
	Content string `json:"content"`

	// Timestamp is epoch milliseconds. Zero means "stamp at insert time".
	Timestamp int64 `json:"timestamp"`

	// DateKey is the UTC calendar date (YYYY-MM-DD) this entry belongs to.
	// It is derived from Timestamp at write time.
	DateKey string `json:"dateKey"`
}

// Task is one queued remote write awaiting replay.
type Task struct {
	Kind TaskKind `json:"type"`

	// Payload is the record to replay, kept opaque so the queue never
	// needs to understand individual record layouts.
	Payload json.RawMessage `json:"payload"`

	// EnqueuedAt is epoch milliseconds. A task that fails a cycle is
	// re-enqueued with a fresh EnqueuedAt; the original is not preserved.
	EnqueuedAt int64 `json:"enqueuedAt"`

	// Seq is the task's position in the append-only queue log. It is
	// assigned by the queue and used to advance the consumed cursor.
	Seq int64 `json:"-"`
}

// Validate checks that a task can be dispatched.
//
// A task failing validation is dropped by the sync coordinator rather than
// retried: a task this code cannot interpret will never succeed later.
func (t *Task) Validate() error {
	switch t.Kind {
	case TaskKindEmail, TaskKindJournal:
	case "":
		return fmt.Errorf("task kind is required")
	default:
		return fmt.Errorf("unknown task kind %q", t.Kind)
	}
	if len(t.Payload) == 0 {
		return fmt.Errorf("task payload is required")
	}
	return nil
}

// Millis converts a time to the epoch-millisecond encoding used on the wire.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts an epoch-millisecond timestamp back to a time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// DateKey returns the UTC calendar date (YYYY-MM-DD) for an
// epoch-millisecond timestamp.
//
// UTC is deliberate: the web client derives the key from an ISO-8601
// string, which is always UTC. Entries recorded near local midnight land
// on the UTC day, so both sides agree on which day an entry belongs to.
func DateKey(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}
