package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"proctrack/internal/config"
	"proctrack/internal/deps"
	"proctrack/internal/scanner"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks the daemon needs before serving.
func RunAll(ctx context.Context, cfg *config.Config, scan scanner.Scanner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.LogDir()),
		CheckDirectoryAccess("Socket directory", filepath.Dir(cfg.Paths.SocketPath)),
	}
	for _, status := range CheckSystemDeps() {
		results = append(results, depResult(status))
	}
	if scan != nil {
		results = append(results, CheckScanner(ctx, scan))
	}
	return results
}

// Failed joins every failed check into one error, or returns nil.
func Failed(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(failed, "; "))
}

func depResult(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available || status.Optional}
	if status.Available {
		result.Detail = status.Path
	} else {
		result.Detail = status.Detail
	}
	return result
}
