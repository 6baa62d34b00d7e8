package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"proctrack/internal/config"
	"proctrack/internal/logging"
	"proctrack/internal/process"
	"proctrack/internal/scanner"
	"proctrack/internal/state"
)

type fakeScanner struct {
	mu    sync.Mutex
	names map[string]struct{}
	err   error
	calls int
}

func (f *fakeScanner) RunningProcesses(context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]struct{}, len(f.names))
	for k := range f.names {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeScanner) set(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = make(map[string]struct{}, len(names))
	for _, n := range names {
		f.names[n] = struct{}{}
	}
}

func (f *fakeScanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type harness struct {
	cfg     *config.Config
	store   *state.Store
	writer  *state.Writer
	scanner *fakeScanner
	daemon  *Daemon
}

func newHarness(t *testing.T, intervals config.Intervals, procs ...process.Process) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.SocketPath = filepath.Join(cfg.Paths.DataDir, "proctrack.sock")

	store := state.NewStore(intervals, process.NewRegistry(procs))
	writer := state.NewWriter(store, state.FilesFromConfig(&cfg), time.Millisecond, logging.NewNop())
	writer.Start()
	t.Cleanup(writer.Close)

	scan := &fakeScanner{}
	d, err := New(&cfg, store, writer, scan, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Treat configured seconds as milliseconds to keep tests fast.
	d.interval = func(v uint64) time.Duration { return time.Duration(v) * time.Millisecond }
	t.Cleanup(d.Stop)
	return &harness{cfg: &cfg, store: store, writer: writer, scanner: scan, daemon: d}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDaemonStartStop(t *testing.T) {
	h := newHarness(t, config.Intervals{PollInterval: 1000, DurationUpdateInterval: 1000, AutosaveInterval: 1000})
	ctx := context.Background()

	if err := h.daemon.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !h.daemon.Status().Running {
		t.Fatal("expected daemon to report running")
	}
	if err := h.daemon.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	h.daemon.Stop()
	if h.daemon.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	h := newHarness(t, config.Intervals{PollInterval: 1000, DurationUpdateInterval: 1000, AutosaveInterval: 1000})
	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	other, err := New(h.cfg, h.store, h.writer, h.scanner, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.Start(context.Background()); err == nil {
		other.Stop()
		t.Fatal("expected lock contention error")
	}
}

func TestLivenessPollerScansFirst(t *testing.T) {
	tracked := process.New("vim")
	untracked := process.New("gimp")
	untracked.IsTracked = false
	stale := process.New("emacs")
	stale.IsRunning = true

	h := newHarness(t, config.Intervals{PollInterval: 10_000, DurationUpdateInterval: 10_000, AutosaveInterval: 10_000}, tracked, untracked, stale)
	h.scanner.set("vim", "gimp")
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	h.daemon.now = func() time.Time { return fixed }

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "first scan", func() bool { return h.store.Processes()[0].IsRunning })

	procs := h.store.Processes()
	if !procs[0].LastSeenDate.Equal(fixed) {
		t.Fatalf("expected last seen stamp, got %v", procs[0].LastSeenDate)
	}
	if procs[1].IsRunning {
		t.Fatal("untracked process must not be marked running")
	}
	if procs[2].IsRunning {
		t.Fatal("process absent from scan must be marked not running")
	}
}

func TestLivenessScanFailureKeepsLooping(t *testing.T) {
	h := newHarness(t, config.Intervals{PollInterval: 5, DurationUpdateInterval: 10_000, AutosaveInterval: 10_000}, process.New("vim"))
	h.scanner.err = errors.New("boom")

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "repeated scans", func() bool { return h.scanner.callCount() >= 3 })
	if h.store.Processes()[0].IsRunning {
		t.Fatal("failed scan must not change liveness")
	}
}

func TestAccrualAddsIntervalToRunningTracked(t *testing.T) {
	running := process.New("vim")
	running.IsRunning = true
	running.Duration = 10
	paused := process.New("gimp")
	paused.IsRunning = true
	paused.IsTracked = false
	idle := process.New("emacs")

	h := newHarness(t, config.Intervals{PollInterval: 10_000, DurationUpdateInterval: 5, AutosaveInterval: 10_000}, running, paused, idle)
	h.scanner.set("vim")

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "accrual", func() bool { return h.store.Processes()[0].Duration >= 15 })
	h.daemon.Stop()

	procs := h.store.Processes()
	if (procs[0].Duration-10)%5 != 0 {
		t.Fatalf("duration should grow in interval steps, got %d", procs[0].Duration)
	}
	if procs[1].Duration != 0 || procs[2].Duration != 0 {
		t.Fatalf("only running tracked processes accrue: %+v", procs)
	}
}

func TestIntervalChangeAppliesNextCycle(t *testing.T) {
	running := process.New("vim")
	running.IsRunning = true
	h := newHarness(t, config.Intervals{PollInterval: 10_000, DurationUpdateInterval: 10_000, AutosaveInterval: 10_000}, running)
	h.scanner.set("vim")

	_ = h.store.WriteConfig(func(c *config.Intervals) error {
		c.DurationUpdateInterval = 2
		return nil
	})
	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "accrual with new interval", func() bool { return h.store.Processes()[0].Duration >= 2 })
}

func TestAutosaveWritesFiles(t *testing.T) {
	h := newHarness(t, config.Intervals{PollInterval: 10_000, DurationUpdateInterval: 10_000, AutosaveInterval: 5}, process.New("vim"))

	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "autosave", func() bool {
		_, err := os.Stat(h.cfg.ProcessesPath())
		return err == nil
	})
	if _, err := os.Stat(h.cfg.IntervalsPath()); err != nil {
		t.Fatalf("config.json not written: %v", err)
	}
}

func TestStopHaltsLoops(t *testing.T) {
	h := newHarness(t, config.Intervals{PollInterval: 2, DurationUpdateInterval: 10_000, AutosaveInterval: 10_000})
	if err := h.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "scans", func() bool { return h.scanner.callCount() >= 2 })
	h.daemon.Stop()

	before := h.scanner.callCount()
	time.Sleep(30 * time.Millisecond)
	if after := h.scanner.callCount(); after != before {
		t.Fatalf("scanner called after stop: %d -> %d", before, after)
	}
}

var _ scanner.Scanner = (*fakeScanner)(nil)
