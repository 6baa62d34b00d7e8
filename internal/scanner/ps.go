package scanner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// PS lists command names through the ps utility.
type PS struct {
	// Binary defaults to "ps".
	Binary string
}

// BinaryName returns the ps executable this scanner runs.
func (p PS) BinaryName() string {
	if strings.TrimSpace(p.Binary) == "" {
		return "ps"
	}
	return p.Binary
}

// RunningProcesses runs `ps -axco comm=` and collects one name per line.
func (p PS) RunningProcesses(ctx context.Context) (map[string]struct{}, error) {
	cmd := commandContext(ctx, p.BinaryName(), "-axco", "comm=") //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", p.BinaryName(), err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", p.BinaryName(), err)
	}
	return parsePSOutput(out), nil
}

func parsePSOutput(out []byte) map[string]struct{} {
	names := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		addName(names, sc.Text())
	}
	return names
}
