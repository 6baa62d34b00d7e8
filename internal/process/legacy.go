package process

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// LegacyProcess is one entry of the older name-keyed export schema.
type LegacyProcess struct {
	DateAdded string `json:"dateAdded"`
	Duration  uint64 `json:"duration"`
	IconPath  string `json:"iconPath"`
	LastSeen  string `json:"lastSeen"`
	Notes     string `json:"notes"`
	Tracking  bool   `json:"tracking"`
}

// DecodeProcesses reads a current-format array of processes.
func DecodeProcesses(r io.Reader) ([]Process, error) {
	var items []Process
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// DecodeLegacy reads a legacy name-keyed map and converts it to processes
// ordered by name. Converted processes are never marked running.
func DecodeLegacy(r io.Reader) ([]Process, error) {
	var raw map[string]LegacyProcess
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Process, 0, len(names))
	for _, name := range names {
		legacy := raw[name]
		lastSeen, err := ParseDate(legacy.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("%s: last seen: %w", name, err)
		}
		added, err := ParseDate(legacy.DateAdded)
		if err != nil {
			return nil, fmt.Errorf("%s: date added: %w", name, err)
		}
		out = append(out, Process{
			IsRunning:    false,
			IsTracked:    legacy.Tracking,
			Icon:         legacy.IconPath,
			Name:         name,
			Duration:     legacy.Duration,
			Notes:        legacy.Notes,
			LastSeenDate: lastSeen,
			AddedDate:    added,
		})
	}
	return out, nil
}
