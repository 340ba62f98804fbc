package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Lexi-Lu02/feeling-care/internal/config"
	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/remote"
	"github.com/Lexi-Lu02/feeling-care/internal/syncer"
)

// mustLoadConfig loads the configuration or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustOpenStore opens the local state store or exits.
func mustOpenStore(cfg *config.Config) *localstore.Store {
	store, err := localstore.Open(cfg.StateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state directory: %v\n", err)
		os.Exit(1)
	}
	return store
}

// newRemoteWriter builds the configured remote backend.
//
// The returned closer releases backend resources; it is a no-op func for
// backends without one. Remote mode "none" is rejected here: commands that
// need a remote check the mode before calling.
func newRemoteWriter(ctx context.Context, cfg *config.Config) (syncer.RemoteWriter, func() error, error) {
	switch cfg.RemoteMode {
	case config.RemoteFirestore:
		w, err := remote.NewFirestore(ctx, remote.FirestoreConfig{
			ProjectID:       cfg.FirestoreProject,
			CredentialsFile: cfg.FirestoreCredentials,
			UID:             cfg.UserID,
		})
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil

	case config.RemoteSQLite:
		w, err := remote.NewSQLite(cfg.SQLitePath, cfg.UserID)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil

	default:
		return nil, nil, fmt.Errorf("remote sync is disabled (remote mode %q)", cfg.RemoteMode)
	}
}
