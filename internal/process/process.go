package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a naive local date-time. It is persisted without a zone so
// files stay portable between machines in different time zones.
type Timestamp struct {
	time.Time
}

// Now returns the current local time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// Epoch is the "never seen" marker assigned to freshly added processes.
func Epoch() Timestamp {
	return Timestamp{Time: time.Date(1970, time.January, 1, 0, 0, 0, 0, time.Local)}
}

// MarshalJSON encodes the timestamp as YYYY-MM-DDTHH:MM:SS[.fraction].
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(timestampLayout))
}

// UnmarshalJSON decodes a zone-less timestamp in local time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("timestamp must not be null")
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// Process is one tracked OS process.
type Process struct {
	IsRunning    bool      `json:"is_running"`
	IsTracked    bool      `json:"is_tracked"`
	Icon         string    `json:"icon"`
	Name         string    `json:"name"`
	Duration     uint64    `json:"duration"`
	Notes        string    `json:"notes"`
	LastSeenDate Timestamp `json:"last_seen_date"`
	AddedDate    Timestamp `json:"added_date"`
}

// New builds a tracked, not-yet-seen process.
func New(name string) Process {
	return Process{
		IsTracked:    true,
		Name:         name,
		LastSeenDate: Epoch(),
		AddedDate:    Now(),
	}
}

// AddDuration adds seconds, saturating at the uint64 maximum.
func (p *Process) AddDuration(seconds uint64) {
	p.Duration = SaturatingAdd(p.Duration, seconds)
}

// SubtractDuration removes seconds, saturating at zero.
func (p *Process) SubtractDuration(seconds uint64) {
	if seconds >= p.Duration {
		p.Duration = 0
		return
	}
	p.Duration -= seconds
}

// SaturatingAdd returns a+b clamped to the uint64 maximum.
func SaturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// Entry pairs a process with its registry position.
type Entry struct {
	ID int `json:"id"`
	Process
}
