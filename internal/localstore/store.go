// Package localstore provides durable key-value persistence for the
// feeling-care offline state.
//
// Each logical key is stored as one JSON document in the state directory
// (e.g. fc_sync_queue -> <dir>/fc_sync_queue.json). A key's value is always
// replaced wholesale; there are no partial or merge writes.
//
// Consistency is single-process only. Two processes mutating the same state
// directory can race; the CLI and daemon tolerate this the same way the web
// client tolerates multiple tabs.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Status reports how a Load resolved.
//
// Load never fails: callers keep whatever fallback they pre-populated the
// destination with. The status exists so recovery paths are observable
// (tests assert on it) instead of being swallowed.
type Status int

const (
	// StatusOK means the key existed and decoded cleanly.
	StatusOK Status = iota

	// StatusMissing means no value has ever been stored for the key.
	StatusMissing

	// StatusCorrupt means a value existed but could not be decoded.
	// The stored bytes are left on disk untouched; the next Save
	// overwrites them.
	StatusCorrupt
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Store persists JSON values under named keys in a single directory.
type Store struct {
	dir string
}

// Open creates a store rooted at dir, creating the directory if needed.
//
// Example:
//
//	store, err := localstore.Open(filepath.Join(home, ".feeling-care"))
//	if err != nil {
//	    return err
//	}
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory the store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load decodes the value stored under key into out.
//
// On StatusMissing or StatusCorrupt, out is left untouched, so callers
// pre-populate it with their fallback (typically an empty list) before
// calling:
//
//	var events []schema.EmailEvent
//	status := store.Load("fc_local_email_events", &events)
func (s *Store) Load(key string, out any) Status {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing
		}
		return StatusCorrupt
	}

	if err := json.Unmarshal(data, out); err != nil {
		return StatusCorrupt
	}
	return StatusOK
}

// Save replaces the value stored under key.
//
// The value is written to a temporary file and renamed into place, so a
// crash mid-write leaves the previous value intact rather than a truncated
// document.
func (s *Store) Save(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	path := s.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
