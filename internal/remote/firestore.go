package remote

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// FirestoreWriter persists records to the FeelingCare Firestore project.
//
// Journal entries are keyed by their DateKey, so redelivery of the same
// day's entry overwrites rather than duplicates — this keeps the remote
// side consistent with the local one-entry-per-day invariant even under
// the queue's at-least-once delivery.
type FirestoreWriter struct {
	client *firestore.Client
	uid    string
}

// FirestoreConfig configures the Firestore backend.
type FirestoreConfig struct {
	// ProjectID is the Firebase project ID.
	ProjectID string

	// CredentialsFile is a path to a service-account JSON file.
	// Empty means application-default credentials.
	CredentialsFile string

	// UID is the user the records are written against. Empty UID makes
	// every write fail with ErrUnauthenticated.
	UID string
}

// NewFirestore connects to Firestore.
//
// Example:
//
//	w, err := remote.NewFirestore(ctx, remote.FirestoreConfig{
//	    ProjectID: "feeling-care",
//	    UID:       uid,
//	})
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
func NewFirestore(ctx context.Context, cfg FirestoreConfig) (*FirestoreWriter, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreWriter{client: client, uid: cfg.UID}, nil
}

// Close releases the Firestore connection.
func (w *FirestoreWriter) Close() error {
	if w.client == nil {
		return nil
	}
	return w.client.Close()
}

// WriteEmailEvent implements syncer.RemoteWriter.
func (w *FirestoreWriter) WriteEmailEvent(ctx context.Context, event schema.EmailEvent) error {
	if w.uid == "" {
		return ErrUnauthenticated
	}

	_, _, err := w.client.Collection("users").Doc(w.uid).Collection("emailEvents").Add(ctx, map[string]any{
		"to":        event.To,
		"subject":   event.Subject,
		"status":    event.Status,
		"timestamp": event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to write email event: %w", err)
	}
	return nil
}

// WriteJournalEntry implements syncer.RemoteWriter.
func (w *FirestoreWriter) WriteJournalEntry(ctx context.Context, entry schema.Entry) error {
	if w.uid == "" {
		return ErrUnauthenticated
	}

	dateKey := entry.DateKey
	if dateKey == "" {
		dateKey = schema.DateKey(entry.Timestamp)
	}

	_, err := w.client.Collection("users").Doc(w.uid).Collection("journalEntries").Doc(dateKey).Set(ctx, map[string]any{
		"mood":      entry.Mood,
		"content":   entry.Content,
		"timestamp": entry.Timestamp,
		"dateKey":   dateKey,
	})
	if err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}
