package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"proctrack/internal/deps"
	"proctrack/internal/scanner"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs the platform scanner runs.
// Both the daemon and the CLI status command use this so the requirement list
// lives in one place.
func CheckSystemDeps() []deps.Status {
	binary := scanner.RequiredBinary()
	if binary == "" {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{{
		Name:        "ps",
		Command:     binary,
		Description: "Required to enumerate running processes",
	}})
}

// CheckScanner runs one enumeration with a short timeout.
func CheckScanner(ctx context.Context, scan scanner.Scanner) Result {
	const name = "Process scanner"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := scan.RunningProcesses(checkCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Name: name, Detail: "scan timed out"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d distinct process names", len(names))}
}

// CheckInstanceLock reports whether a daemon currently holds the instance
// lock at path. Passed means the lock is held.
func CheckInstanceLock(path string) Result {
	const name = "Daemon lock"

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Detail: "not held"}
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("probe failed (%v)", err)}
	}
	if ok {
		_ = lock.Unlock()
		return Result{Name: name, Detail: "not held"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("held (%s)", path)}
}
