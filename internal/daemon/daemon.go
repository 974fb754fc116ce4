// Package daemon runs the sync-and-route loop on a poll interval, with
// flock-based locking to prevent multiple instances fighting over the same
// incoming directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/router"
	"shuttle/internal/services"
	"shuttle/internal/transfer"
)

// Daemon coordinates the periodic sync passes and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	store  *catalog.Store
	orch   *transfer.Orchestrator
	router *router.Router
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, orch *transfer.Orchestrator, rt *router.Router, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || orch == nil || rt == nil {
		return nil, errors.New("daemon requires config, store, orchestrator, and router")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "shuttled.lock")
	return &Daemon{
		cfg:      cfg,
		store:    store,
		orch:     orch,
		router:   rt,
		logger:   logger.With(logging.String(logging.FieldComponent, "daemon")),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the daemon lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Start acquires the daemon lock and launches the poll loop.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shuttle daemon instance is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)

	go d.loop(loopCtx)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("poll_interval_seconds", d.cfg.Daemon.PollIntervalSeconds))
	return nil
}

// Stop cancels the poll loop, waits for the current pass to finish, and
// releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Running reports whether the poll loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

func (d *Daemon) loop(ctx context.Context) {
	defer close(d.done)

	interval := time.Duration(d.cfg.Daemon.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	// First pass immediately, then on the ticker.
	d.runPass(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runPass(ctx)
		}
	}
}

// runPass executes one sync-then-route pass under a fresh correlation id.
func (d *Daemon) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	passCtx := services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(passCtx, d.logger)

	started := time.Now()
	summary, err := d.orch.SyncFromRemote(passCtx, false)
	if err != nil {
		logger.Error("sync pass failed", logging.Error(err))
		return
	}

	outcomes, err := d.router.RouteBacklog(passCtx, false)
	if err != nil {
		logger.Error("routing pass failed", logging.Error(err))
		return
	}

	routed := 0
	for _, outcome := range outcomes {
		if outcome.Routed {
			routed++
		}
	}
	logger.Info("pass complete",
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("routed", routed),
		logging.Duration("elapsed", time.Since(started)))
}
