package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"proctrack/internal/config"
	"proctrack/internal/fileutil"
	"proctrack/internal/logging"
	"proctrack/internal/process"
)

// ErrWriterClosed is returned by Save after Close.
var ErrWriterClosed = errors.New("state writer closed")

// DefaultLockBackoff is the wait before retrying a held lock file.
const DefaultLockBackoff = time.Second

type saveRequest struct {
	reason string
	result chan error
}

// Writer serializes every write of the state files through one goroutine.
type Writer struct {
	store   *Store
	files   Files
	backoff time.Duration
	logger  *slog.Logger

	requests chan saveRequest
	stop     chan struct{}
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWriter prepares a writer for store. Call Start before Save.
func NewWriter(store *Store, files Files, backoff time.Duration, logger *slog.Logger) *Writer {
	if backoff <= 0 {
		backoff = DefaultLockBackoff
	}
	return &Writer{
		store:    store,
		files:    files,
		backoff:  backoff,
		logger:   logging.NewComponentLogger(logger, "persistence"),
		requests: make(chan saveRequest),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the writer goroutine.
func (w *Writer) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Close stops the writer after any in-flight save completes.
func (w *Writer) Close() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	w.startOnce.Do(func() { close(w.done) })
	<-w.done
}

// Save asks the writer to persist both documents and waits for the result.
func (w *Writer) Save(ctx context.Context, reason string) error {
	req := saveRequest{reason: reason, result: make(chan error, 1)}
	select {
	case w.requests <- req:
	case <-w.stop:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case req := <-w.requests:
			req.result <- w.saveAll(req.reason)
		}
	}
}

func (w *Writer) saveAll(reason string) error {
	start := time.Now()
	cfgErr := w.saveConfig()
	if cfgErr != nil {
		cfgErr = fmt.Errorf("save config: %w", cfgErr)
	}
	regErr := w.saveRegistry()
	if regErr != nil {
		regErr = fmt.Errorf("save processes: %w", regErr)
	}
	err := errors.Join(cfgErr, regErr)
	if err == nil {
		w.logger.Debug("state saved",
			logging.String("reason", reason),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
	return err
}

func (w *Writer) saveConfig() error {
	var (
		data []byte
		err  error
	)
	w.store.ReadConfig(func(c config.Intervals) {
		data, err = json.MarshalIndent(c, "", "  ")
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return w.writeLocked(w.files.Config, data)
}

func (w *Writer) saveRegistry() error {
	var data []byte
	err := w.store.ReadRegistry(func(r *process.Registry) error {
		var encErr error
		data, encErr = json.MarshalIndent(r, "", "  ")
		return encErr
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return w.writeLocked(w.files.Processes, data)
}

// writeLocked replaces path while holding its sibling lock file. A lock that
// stays held after one backoff is ignored with a warning.
func (w *Writer) writeLocked(path string, data []byte) error {
	lockFile := lockPath(path)
	lock := flock.New(lockFile)
	defer lock.Close()

	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", lockFile, err)
	}
	if !locked {
		timer := time.NewTimer(w.backoff)
		select {
		case <-timer.C:
		case <-w.stop:
			timer.Stop()
		}
		locked, err = lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", lockFile, err)
		}
	}
	if !locked {
		logging.WarnWithContext(w.logger, "lock file still held; writing without it", "state_lock_contended",
			logging.String("path", path),
			logging.String("lock", lockFile),
			logging.String(logging.FieldErrorHint, "another process may be writing the state files"),
			logging.String(logging.FieldImpact, "concurrent writers could interleave"),
		)
	}

	writeErr := fileutil.WriteFileAtomic(path, data, 0o644)

	if locked {
		if err := lock.Unlock(); err != nil {
			w.logger.Debug("release lock failed", logging.String("lock", lockFile), logging.Error(err))
		}
		if err := os.Remove(lockFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("remove lock file failed", logging.String("lock", lockFile), logging.Error(err))
		}
	}
	return writeErr
}
