package state_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"proctrack/internal/config"
	"proctrack/internal/logging"
	"proctrack/internal/process"
	"proctrack/internal/state"
)

func newWriter(t *testing.T, store *state.Store, files state.Files, backoff time.Duration) *state.Writer {
	t.Helper()
	w := state.NewWriter(store, files, backoff, logging.NewNop())
	w.Start()
	t.Cleanup(w.Close)
	return w
}

func TestWriterSaveRoundTrip(t *testing.T) {
	files := state.NewFiles(t.TempDir())
	reg := process.NewRegistry(nil)
	p := process.New("vim")
	p.Duration = 90
	if err := reg.Add(p); err != nil {
		t.Fatal(err)
	}
	cfg := config.Intervals{PollInterval: 20, DurationUpdateInterval: 3, AutosaveInterval: 120}
	store := state.NewStore(cfg, reg)
	w := newWriter(t, store, files, 10*time.Millisecond)

	if err := w.Save(context.Background(), "test"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(files.Processes)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n  {\n    \"is_running\": false") {
		t.Fatalf("expected two-space indented JSON, got %s", raw)
	}
	if _, err := os.Stat(files.Processes + ".lock"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock file should be removed after save, stat err=%v", err)
	}

	loaded, err := state.Load(files, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Config() != cfg {
		t.Fatalf("config mismatch: %+v", loaded.Config())
	}
	procs := loaded.Processes()
	if len(procs) != 1 || procs[0].Name != "vim" || procs[0].Duration != 90 {
		t.Fatalf("unexpected processes: %+v", procs)
	}
}

func TestWriterProceedsWhenLockHeld(t *testing.T) {
	files := state.NewFiles(t.TempDir())
	store := state.NewStore(config.DefaultIntervals(), nil)
	w := newWriter(t, store, files, 20*time.Millisecond)

	holder := flock.New(files.Processes + ".lock")
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	defer holder.Unlock()

	start := time.Now()
	if err := w.Save(context.Background(), "test"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected a backoff before proceeding, took %v", elapsed)
	}
	if _, err := os.Stat(files.Processes); err != nil {
		t.Fatalf("processes file not written: %v", err)
	}
	if _, err := os.Stat(files.Processes + ".lock"); err != nil {
		t.Fatalf("lock owned by another holder must be left alone: %v", err)
	}
}

func TestWriterJoinsIndependentFailures(t *testing.T) {
	dir := t.TempDir()
	files := state.Files{
		Config:    filepath.Join(dir, "missing", "config.json"),
		Processes: filepath.Join(dir, "processes.json"),
	}
	store := state.NewStore(config.DefaultIntervals(), nil)
	w := newWriter(t, store, files, time.Millisecond)

	err := w.Save(context.Background(), "test")
	if err == nil || !strings.Contains(err.Error(), "save config") {
		t.Fatalf("expected config save error, got %v", err)
	}
	if _, statErr := os.Stat(files.Processes); statErr != nil {
		t.Fatalf("registry save should not be skipped: %v", statErr)
	}
}

func TestWriterSaveAfterClose(t *testing.T) {
	store := state.NewStore(config.DefaultIntervals(), nil)
	w := state.NewWriter(store, state.NewFiles(t.TempDir()), time.Millisecond, nil)
	w.Start()
	w.Close()

	if err := w.Save(context.Background(), "late"); !errors.Is(err, state.ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}
