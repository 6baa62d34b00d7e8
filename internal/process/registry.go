package process

import (
	"encoding/json"
	"strings"
	"time"
)

// Direction selects how Move repositions an entry.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

// ParseDirection accepts a direction name case-insensitively.
func ParseDirection(value string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(value))); d {
	case DirectionUp, DirectionDown, DirectionTop, DirectionBottom:
		return d, nil
	default:
		return "", newError(ErrInvalidInput, "unknown move direction %q", value)
	}
}

// Registry is the ordered list of tracked processes. The slice position of an
// entry is its public ID, so every mutation that reorders or removes entries
// renumbers the ones after it.
type Registry struct {
	items []Process
}

// NewRegistry wraps items without copying.
func NewRegistry(items []Process) *Registry {
	return &Registry{items: items}
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.items)
}

// Processes returns a copy of all entries in order.
func (r *Registry) Processes() []Process {
	out := make([]Process, len(r.items))
	copy(out, r.items)
	return out
}

// Get returns a pointer to the entry for mutation in place.
func (r *Registry) Get(id int) (*Process, error) {
	if id < 0 || id >= len(r.items) {
		return nil, newError(ErrNotFound, "invalid ID %d", id)
	}
	return &r.items[id], nil
}

// Contains reports whether a process with name is already tracked.
func (r *Registry) Contains(name string) bool {
	for i := range r.items {
		if r.items[i].Name == name {
			return true
		}
	}
	return false
}

// Add appends p unless its name is already tracked.
func (r *Registry) Add(p Process) error {
	if r.Contains(p.Name) {
		return newError(ErrAlreadyTracked, "process %s is already tracked", p.Name)
	}
	r.items = append(r.items, p)
	return nil
}

// Remove deletes the entry at id and returns it.
func (r *Registry) Remove(id int) (Process, error) {
	if len(r.items) == 0 {
		return Process{}, newError(ErrEmptyRegistry, "no processes to remove")
	}
	if id < 0 || id >= len(r.items) {
		return Process{}, newError(ErrNotFound, "no process with id %d", id)
	}
	removed := r.items[id]
	r.items = append(r.items[:id], r.items[id+1:]...)
	return removed, nil
}

// Move repositions the entry at id and returns its name. Up and down swap
// with the neighbour; top and bottom shift every entry in between by one.
func (r *Registry) Move(id int, dir Direction) (string, error) {
	switch {
	case len(r.items) == 0:
		return "", newError(ErrEmptyRegistry, "no processes to move")
	case len(r.items) == 1:
		return "", newError(ErrSingleEntry, "cannot move only one process")
	case id < 0 || id >= len(r.items):
		return "", newError(ErrNotFound, "no process with id %d", id)
	}

	name := r.items[id].Name
	last := len(r.items) - 1

	switch dir {
	case DirectionUp, DirectionTop:
		if id == 0 {
			return "", newError(ErrAtExtreme, "%s already at top", name)
		}
		target := id - 1
		if dir == DirectionTop {
			target = 0
		}
		for i := id; i > target; i-- {
			r.items[i], r.items[i-1] = r.items[i-1], r.items[i]
		}
	case DirectionDown, DirectionBottom:
		if id == last {
			return "", newError(ErrAtExtreme, "%s already at bottom", name)
		}
		target := id + 1
		if dir == DirectionBottom {
			target = last
		}
		for i := id; i < target; i++ {
			r.items[i], r.items[i+1] = r.items[i+1], r.items[i]
		}
	default:
		return "", newError(ErrInvalidInput, "unknown move direction %q", dir)
	}
	return name, nil
}

// Entries returns every entry paired with its ID.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.items))
	for i := range r.items {
		out = append(out, Entry{ID: i, Process: r.items[i]})
	}
	return out
}

// Select returns the entries whose IDs are matched by set, in registry order.
// IDs without an entry are skipped.
func (r *Registry) Select(set IDSet) []Entry {
	out := make([]Entry, 0)
	for i := range r.items {
		if set.Contains(i) {
			out = append(out, Entry{ID: i, Process: r.items[i]})
		}
	}
	return out
}

// Accrue adds seconds to every running and tracked entry and returns how many
// entries changed.
func (r *Registry) Accrue(seconds uint64) int {
	updated := 0
	for i := range r.items {
		p := &r.items[i]
		if !p.IsRunning || !p.IsTracked {
			continue
		}
		p.AddDuration(seconds)
		updated++
	}
	return updated
}

// RefreshLiveness applies an OS snapshot: tracked entries whose name is in
// running are marked running and stamped with now, every other entry is marked
// not running. It returns the number of running entries.
func (r *Registry) RefreshLiveness(running map[string]struct{}, now time.Time) int {
	count := 0
	for i := range r.items {
		p := &r.items[i]
		_, alive := running[p.Name]
		if alive && p.IsTracked {
			p.IsRunning = true
			p.LastSeenDate = Timestamp{Time: now}
			count++
			continue
		}
		p.IsRunning = false
	}
	return count
}

// MarshalJSON encodes the registry as a plain array.
func (r *Registry) MarshalJSON() ([]byte, error) {
	if r.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.items)
}

// UnmarshalJSON decodes a plain array of processes.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var items []Process
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	r.items = items
	return nil
}

// Clone returns a deep copy safe to use outside a lock.
func (r *Registry) Clone() *Registry {
	return NewRegistry(r.Processes())
}
