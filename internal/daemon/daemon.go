package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"proctrack/internal/config"
	"proctrack/internal/logging"
	"proctrack/internal/scanner"
	"proctrack/internal/state"
)

// Daemon runs the background tracking loops and enforces single-instance
// execution.
type Daemon struct {
	store   *state.Store
	writer  *state.Writer
	scanner scanner.Scanner
	logger  *slog.Logger

	lockPath string
	lock     *flock.Flock

	// interval converts a configured number of seconds into a wait.
	interval func(seconds uint64) time.Duration
	now      func() time.Time

	mu        sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedAt time.Time
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	StartedAt    time.Time
	LockFilePath string
	Intervals    config.Intervals
}

// New constructs a daemon. The writer must already be started by the caller,
// which also owns closing it.
func New(cfg *config.Config, store *state.Store, writer *state.Writer, scan scanner.Scanner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || writer == nil || scan == nil {
		return nil, errors.New("daemon requires config, store, writer, and scanner")
	}

	lockPath := cfg.InstanceLockPath()
	return &Daemon{
		store:    store,
		writer:   writer,
		scanner:  scan,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		interval: config.Seconds,
		now:      time.Now,
	}, nil
}

// Start acquires the instance lock and launches the liveness, accrual and
// autosave loops.
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
		return errors.New("another proctrack daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.startedAt = d.now()
	d.running.Store(true)

	d.wg.Add(3)
	go d.pollLiveness(runCtx)
	go d.accrueDurations(runCtx)
	go d.autosave(runCtx)

	d.logger.Info("proctrack daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop cancels the loops, waits for them to exit and releases the instance
// lock. It does not save; callers request a final save from the writer.
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
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_unlock_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start fails"),
			logging.String(logging.FieldImpact, "a stale lock file may remain"),
		)
	}
	d.running.Store(false)
	d.logger.Info("proctrack daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	started := d.startedAt
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		StartedAt:    started,
		LockFilePath: d.lockPath,
		Intervals:    d.store.Config(),
	}
}
