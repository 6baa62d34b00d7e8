package daemonctl

import (
	"context"
	"time"

	"proctrack/internal/config"
	"proctrack/internal/deps"
	"proctrack/internal/ipc"
	"proctrack/internal/preflight"
	"proctrack/internal/scanner"
)

// Snapshot is what `proctrack status` renders.
type Snapshot struct {
	Running      bool
	PID          int
	Intervals    *config.Intervals
	Tracked      int
	Checks       []preflight.Result
	Dependencies []deps.Status
}

// BuildStatusSnapshot combines daemon reachability with local environment
// checks. Intervals and Tracked are only filled in when the daemon answers.
func BuildStatusSnapshot(ctx context.Context, socketPath string, cfg *config.Config) (Snapshot, error) {
	var snap Snapshot
	pidPath := ""
	if cfg != nil {
		pidPath = cfg.PIDPath()
	}
	running, pid, err := ProcessInfo(socketPath, pidPath)
	if err != nil {
		return snap, err
	}
	snap.Running = running
	snap.PID = pid

	if running {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		client := ipc.NewClient(socketPath)
		if intervals, err := client.Settings(queryCtx); err == nil {
			snap.Intervals = &intervals
		}
		if entries, err := client.Show(queryCtx, ""); err == nil {
			for _, e := range entries {
				if e.IsTracked {
					snap.Tracked++
				}
			}
		}
	}

	if cfg != nil {
		snap.Checks = append(snap.Checks,
			preflight.CheckInstanceLock(cfg.InstanceLockPath()),
			preflight.CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
			preflight.CheckScanner(ctx, scanner.Default()),
		)
	}
	snap.Dependencies = preflight.CheckSystemDeps()
	return snap, nil
}
