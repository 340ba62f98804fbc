// Package connectivity detects offline-to-online transitions.
//
// The watcher stands in for the browser's "online" event: it polls a probe
// endpoint at a fixed interval, tracks the current state, and delivers one
// notification per offline-to-online transition. Nothing is delivered for
// online-to-offline transitions or for probes that confirm the current
// state, so consumers only ever react to reconnects.
package connectivity

import (
	"context"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Prober reports whether the network currently looks reachable.
type Prober func(ctx context.Context) bool

// Config configures the watcher.
type Config struct {
	// ProbeAddr is the host:port dialed to test reachability
	// (default: firestore.googleapis.com:443).
	ProbeAddr string

	// Interval is how often to probe (default: 15s).
	Interval time.Duration

	// Timeout bounds a single probe attempt (default: 5s).
	Timeout time.Duration

	// Probe overrides the default TCP-dial probe. Used in tests.
	Probe Prober

	// Logger for watcher activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ProbeAddr: "firestore.googleapis.com:443",
		Interval:  15 * time.Second,
		Timeout:   5 * time.Second,
		Logger:    log.New(os.Stderr, "[connectivity] ", log.LstdFlags),
	}
}

// Watcher polls for network reachability and emits reconnect events.
type Watcher struct {
	config *Config
	probe  Prober

	mu     sync.Mutex
	online bool

	events chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher. Until the first probe completes the state
// is assumed online, so a healthy start does not produce a spurious
// reconnect event.
func NewWatcher(config *Config) *Watcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Interval <= 0 {
		config.Interval = 15 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[connectivity] ", log.LstdFlags)
	}

	probe := config.Probe
	if probe == nil {
		addr := config.ProbeAddr
		if addr == "" {
			addr = "firestore.googleapis.com:443"
		}
		probe = dialProbe(addr)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config: config,
		probe:  probe,
		online: true,
		events: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// dialProbe returns a Prober that attempts a TCP connection to addr.
func dialProbe(addr string) Prober {
	return func(ctx context.Context) bool {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// Start begins probing in the background.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts probing and waits for the loop to exit. The events channel is
// not closed; consumers select on their own shutdown signal.
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
}

// Online returns the last observed state.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Events delivers one value per offline-to-online transition.
//
// The channel is buffered with capacity one: reconnects that pile up while
// the consumer is busy coalesce into a single pending notification, which
// is all a drain-triggering consumer needs.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// loop probes at the configured interval and records transitions.
func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(w.ctx, w.config.Timeout)
			up := w.probe(probeCtx)
			cancel()

			w.mu.Lock()
			wasOnline := w.online
			w.online = up
			w.mu.Unlock()

			if up && !wasOnline {
				w.config.Logger.Println("Network is back online")
				select {
				case w.events <- struct{}{}:
				default:
				}
			} else if !up && wasOnline {
				w.config.Logger.Println("Network appears offline")
			}
		}
	}
}
