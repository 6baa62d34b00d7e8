// Package scanner enumerates the names of processes currently running on the
// host. The daemon's liveness poller is its only consumer.
package scanner

import (
	"context"
	"sort"
	"strings"
)

// Scanner reports the set of running process names.
type Scanner interface {
	RunningProcesses(ctx context.Context) (map[string]struct{}, error)
}

// Func adapts a function to the Scanner interface.
type Func func(ctx context.Context) (map[string]struct{}, error)

// RunningProcesses calls f.
func (f Func) RunningProcesses(ctx context.Context) (map[string]struct{}, error) {
	return f(ctx)
}

// Sorted returns the names in ascending byte order.
func Sorted(names map[string]struct{}) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func addName(set map[string]struct{}, raw string) {
	if name := strings.TrimSpace(raw); name != "" {
		set[name] = struct{}{}
	}
}
