// Package journal maintains the local daily journal log.
//
// The log enforces at-most-one entry per UTC calendar day: adding an entry
// for a day that already has one replaces it in place, preserving the
// list position. Deduplicate exists as a repair sweep for duplicates
// introduced by other writers (bulk imports, older clients).
package journal

import (
	"fmt"
	"sort"
	"time"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/retention"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// StateKey is the localstore key the journal entry list persists under.
// Shared with the web client's localStorage layout.
const StateKey = "fc_local_journal_entries"

// Log records daily journal entries in local storage.
type Log struct {
	store  *localstore.Store
	policy retention.Policy

	now func() time.Time
}

// New creates a journal log backed by store.
func New(store *localstore.Store) *Log {
	return &Log{
		store:  store,
		policy: retention.Default(),
		now:    time.Now,
	}
}

// Add records a journal entry for the entry's calendar day.
//
// A zero Timestamp is stamped with the current time, and DateKey is always
// recomputed from the timestamp. If the list already holds an entry for
// the same DateKey, the new entry replaces it at the same position;
// otherwise the entry is prepended. The retention window is applied before
// persisting. Unlike the email log there is no count cap.
func (l *Log) Add(entry schema.Entry) error {
	list, _ := l.Entries()

	if entry.Timestamp == 0 {
		entry.Timestamp = schema.Millis(l.now())
	}
	entry.DateKey = schema.DateKey(entry.Timestamp)

	replaced := false
	for i, existing := range list {
		if schema.DateKey(existing.Timestamp) == entry.DateKey {
			list[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		list = append([]schema.Entry{entry}, list...)
	}

	now := l.now()
	kept := list[:0]
	for _, e := range list {
		if l.policy.Keep(now, e.Timestamp) {
			kept = append(kept, e)
		}
	}

	if err := l.store.Save(StateKey, kept); err != nil {
		return fmt.Errorf("failed to persist journal entries: %w", err)
	}
	return nil
}

// Entries returns the persisted list verbatim.
//
// No filtering happens on read. The status reports whether stored state
// was missing or corrupt, in which case the returned list is empty.
func (l *Log) Entries() ([]schema.Entry, localstore.Status) {
	entries := []schema.Entry{}
	status := l.store.Load(StateKey, &entries)
	if status != localstore.StatusOK {
		return []schema.Entry{}, status
	}
	return entries, status
}

// Deduplicate collapses the log to one entry per DateKey.
//
// Add only guards against duplicates introduced through Add itself;
// entries written by other paths can still collide. This sweep sorts the
// full list by timestamp descending and keeps the first (most recent)
// entry seen for each day. It is idempotent and returns the number of
// entries discarded.
func (l *Log) Deduplicate() (int, error) {
	list, _ := l.Entries()

	sorted := make([]schema.Entry, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	seen := make(map[string]bool)
	unique := make([]schema.Entry, 0, len(sorted))
	for _, entry := range sorted {
		key := schema.DateKey(entry.Timestamp)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, entry)
	}

	if err := l.store.Save(StateKey, unique); err != nil {
		return 0, fmt.Errorf("failed to persist deduplicated entries: %w", err)
	}
	return len(list) - len(unique), nil
}
