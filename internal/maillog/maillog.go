// Package maillog maintains the local log of outbound email attempts.
//
// The log is append-only from the caller's perspective: events are
// prepended most-recent-first, trimmed to the retention window, and capped
// at the 100 newest entries to bound the state file's size.
package maillog

import (
	"fmt"
	"time"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/retention"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// StateKey is the localstore key the email event list persists under.
// Shared with the web client's localStorage layout.
const StateKey = "fc_local_email_events"

// MaxEvents caps the persisted list after retention filtering.
const MaxEvents = 100

// Log records email events in local storage.
type Log struct {
	store  *localstore.Store
	policy retention.Policy

	now func() time.Time
}

// New creates an email event log backed by store.
func New(store *localstore.Store) *Log {
	return &Log{
		store:  store,
		policy: retention.Default(),
		now:    time.Now,
	}
}

// Add records one email attempt.
//
// A zero Timestamp is stamped with the current time. The event is
// prepended, the retention window applied, the list capped to MaxEvents,
// and the result persisted. Add never fails because of prior corrupt
// state; a corrupt list is replaced by a fresh one containing the event.
func (l *Log) Add(event schema.EmailEvent) error {
	list, _ := l.Events()

	if event.Timestamp == 0 {
		event.Timestamp = schema.Millis(l.now())
	}

	list = append([]schema.EmailEvent{event}, list...)

	now := l.now()
	kept := list[:0]
	for _, e := range list {
		if l.policy.Keep(now, e.Timestamp) {
			kept = append(kept, e)
		}
	}
	if len(kept) > MaxEvents {
		kept = kept[:MaxEvents]
	}

	if err := l.store.Save(StateKey, kept); err != nil {
		return fmt.Errorf("failed to persist email events: %w", err)
	}
	return nil
}

// Events returns the persisted list verbatim, most recent first.
//
// No filtering happens on read; expired entries linger until the next Add.
// The status reports whether stored state was missing or corrupt, in which
// case the returned list is empty.
func (l *Log) Events() ([]schema.EmailEvent, localstore.Status) {
	events := []schema.EmailEvent{}
	status := l.store.Load(StateKey, &events)
	if status != localstore.StatusOK {
		return []schema.EmailEvent{}, status
	}
	return events, status
}
