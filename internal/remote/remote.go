// Package remote provides RemoteWriter backends for the sync coordinator.
//
// Two backends exist:
//   - Firestore: the production store used by the FeelingCare app, writing
//     under users/{uid}/emailEvents and users/{uid}/journalEntries.
//   - SQLite: a standalone store for development and tests, persisting the
//     same records to a local database file.
//
// Both reject writes without a user identity; the coordinator treats that
// the same as any other remote failure.
package remote

import "errors"

// ErrUnauthenticated is returned when a write is attempted without a user
// identity. No network or disk round-trip is made in that case.
var ErrUnauthenticated = errors.New("remote write requires an authenticated user")
