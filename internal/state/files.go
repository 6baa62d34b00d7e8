package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"proctrack/internal/config"
	"proctrack/internal/logging"
	"proctrack/internal/process"
)

const lockSuffix = ".lock"

// Files names the persisted state documents.
type Files struct {
	Config    string
	Processes string
}

// NewFiles returns the standard file layout under dataDir.
func NewFiles(dataDir string) Files {
	return Files{
		Config:    filepath.Join(dataDir, "config.json"),
		Processes: filepath.Join(dataDir, "processes.json"),
	}
}

// FilesFromConfig returns the layout for the configured data directory.
func FilesFromConfig(cfg *config.Config) Files {
	return Files{
		Config:    cfg.IntervalsPath(),
		Processes: cfg.ProcessesPath(),
	}
}

func lockPath(path string) string {
	return path + lockSuffix
}

// Load reads both documents. A missing file yields the default value for it;
// a file that cannot be read or decoded, or intervals below their minimums,
// is an error. A repeated process name keeps its first entry and is logged.
func Load(files Files, logger *slog.Logger) (*Store, error) {
	cfg, err := loadIntervals(files.Config)
	if err != nil {
		return nil, err
	}
	reg, err := loadRegistry(files.Processes, logging.NewComponentLogger(logger, "state"))
	if err != nil {
		return nil, err
	}
	return NewStore(cfg, reg), nil
}

func loadIntervals(path string) (config.Intervals, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.DefaultIntervals(), nil
		}
		return config.Intervals{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := config.DecodeIntervals(f)
	if err != nil {
		return config.Intervals{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func loadRegistry(path string, logger *slog.Logger) (*process.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return process.NewRegistry(nil), nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	items, err := process.DecodeProcesses(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	reg := process.NewRegistry(nil)
	for _, p := range items {
		if err := reg.Add(p); err != nil {
			logging.WarnWithContext(logger, "skipping duplicate process", "state_duplicate_skipped",
				logging.String(logging.FieldProcess, p.Name),
				logging.String("file", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the later entry and its duration are dropped on next save"),
				logging.String(logging.FieldErrorHint, "merge the durations by hand before the next save"),
			)
		}
	}
	return reg, nil
}
