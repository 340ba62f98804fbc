// Package syncer replays queued local writes to the remote store.
package syncer

import (
	"context"

	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// RemoteWriter persists records against the authenticated user's identity
// in the remote store.
//
// Implementations must treat writes as idempotent where the backend allows
// it: the queue guarantees at-least-once delivery, so a record can arrive
// twice after a crash between delivery and cursor advance.
type RemoteWriter interface {
	// WriteEmailEvent persists one outbound-email activity record.
	//
	// Fails if the caller is unauthenticated; the coordinator treats
	// that the same as any other remote failure and requeues the task.
	WriteEmailEvent(ctx context.Context, event schema.EmailEvent) error

	// WriteJournalEntry persists one daily journal entry.
	//
	// Fails if the caller is unauthenticated; the coordinator treats
	// that the same as any other remote failure and requeues the task.
	WriteJournalEntry(ctx context.Context, entry schema.Entry) error
}
