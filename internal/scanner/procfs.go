package scanner

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
)

// ProcFS reads command names from a Linux /proc tree.
type ProcFS struct {
	// Root defaults to /proc.
	Root string
}

// RunningProcesses reads the comm of every process under root. Processes
// that exit or cannot be read mid-scan are skipped.
func (p ProcFS) RunningProcesses(ctx context.Context) (map[string]struct{}, error) {
	root := p.Root
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", root, err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	names := make(map[string]struct{}, len(procs))
	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		comm, err := proc.Comm()
		if err != nil {
			continue
		}
		addName(names, comm)
	}
	return names, nil
}
