// Package daemon runs the background sync process.
//
// The daemon:
// 1. Runs one drain cycle at startup
// 2. Runs one drain cycle per offline-to-online transition
// 3. Watches the state directory so dashboard clients see queue changes
//    made by concurrent CLI invocations
// 4. Handles graceful shutdown
//
// File events are display-only: they update the dashboard but never
// trigger a drain. Drains happen only at startup and on reconnect.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Lexi-Lu02/feeling-care/internal/connectivity"
	"github.com/Lexi-Lu02/feeling-care/internal/dashboard"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/syncer"
)

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before reporting state-file
	// changes, batching rapid updates together
	DebounceInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 250 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates connectivity watching, drain cycles, and status
// broadcasting.
type Daemon struct {
	queue    *queue.Queue
	syncer   *syncer.Syncer
	network  *connectivity.Watcher
	dash     *dashboard.Server // nil disables broadcasting
	stateDir string
	config   *Config

	fsWatcher *fsnotify.Watcher
	dirty     bool
	dirtyMu   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon.
//
// The connectivity watcher must not be started yet; the daemon owns its
// lifecycle. dash may be nil to run without a dashboard.
func New(q *queue.Queue, s *syncer.Syncer, network *connectivity.Watcher, dash *dashboard.Server, stateDir string, config *Config) (*Daemon, error) {
	if q == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if s == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if network == nil {
		return nil, fmt.Errorf("connectivity watcher cannot be nil")
	}
	if stateDir == "" {
		return nil, fmt.Errorf("stateDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 250 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		queue:     q,
		syncer:    s,
		network:   network,
		dash:      dash,
		stateDir:  stateDir,
		config:    config,
		fsWatcher: fsWatcher,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	// Drain once at startup. A failed cycle is not fatal: the queue
	// keeps its tasks and the next reconnect retries.
	d.runCycle()

	if err := d.fsWatcher.Add(d.stateDir); err != nil {
		return fmt.Errorf("failed to watch state directory: %w", err)
	}
	d.config.Logger.Printf("Watching state: %s", d.stateDir)

	d.network.Start()

	d.wg.Add(3)
	go d.reconnectLoop()
	go d.watchStateFiles()
	go d.reportStateChanges()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()
	d.network.Stop()

	if err := d.fsWatcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// runCycle performs one drain cycle and broadcasts the result.
func (d *Daemon) runCycle() {
	start := time.Now()
	stats, err := d.syncer.RunCycle(d.ctx)
	if err != nil {
		d.config.Logger.Printf("Warning: drain cycle reported local errors: %v", err)
	}

	if d.dash != nil && stats.Processed > 0 {
		d.dash.BroadcastCycleComplete(dashboard.CycleCompleteData{
			Processed: stats.Processed,
			Delivered: stats.Delivered,
			Requeued:  stats.Requeued,
			Dropped:   stats.Dropped,
			Duration:  time.Since(start),
		})
		d.broadcastQueueDepth()
	}
}

// reconnectLoop runs a drain cycle per offline-to-online transition.
func (d *Daemon) reconnectLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-d.network.Events():
			d.config.Logger.Println("Reconnect detected, draining queue")
			if d.dash != nil {
				d.dash.BroadcastConnectivity(true)
			}
			d.runCycle()
		}
	}
}

// watchStateFiles monitors the state directory and flags queue changes.
func (d *Daemon) watchStateFiles() {
	defer d.wg.Done()

	queueFile := queue.StateKey + ".json"

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != queueFile {
				continue
			}

			d.dirtyMu.Lock()
			d.dirty = true
			d.dirtyMu.Unlock()

		case err, ok := <-d.fsWatcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// reportStateChanges broadcasts debounced queue updates to the dashboard.
func (d *Daemon) reportStateChanges() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.dirtyMu.Lock()
			dirty := d.dirty
			d.dirty = false
			d.dirtyMu.Unlock()

			if dirty {
				d.broadcastQueueDepth()
			}
		}
	}
}

// broadcastQueueDepth sends the current queue depth to the dashboard.
func (d *Daemon) broadcastQueueDepth() {
	if d.dash == nil {
		return
	}
	d.dash.BroadcastQueueUpdate(dashboard.QueueUpdateData{
		Depth:  d.queue.Depth(),
		Cursor: d.queue.Cursor(),
	})
}
