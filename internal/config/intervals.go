package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Minimum tracking intervals, in seconds.
const (
	MinPollInterval           = 10
	MinDurationUpdateInterval = 1
	MinAutosaveInterval       = 60
)

// Intervals is the runtime tracking cadence persisted as config.json in the
// data directory. All values are seconds.
type Intervals struct {
	PollInterval           uint64 `json:"poll_interval"`
	DurationUpdateInterval uint64 `json:"duration_update_interval"`
	AutosaveInterval       uint64 `json:"autosave_interval"`
}

// DefaultIntervals returns the intervals used when no config.json exists.
func DefaultIntervals() Intervals {
	return Intervals{
		PollInterval:           15,
		DurationUpdateInterval: 5,
		AutosaveInterval:       300,
	}
}

// Validate reports the first interval below its minimum.
func (i Intervals) Validate() error {
	if i.PollInterval < MinPollInterval {
		return fmt.Errorf("poll_interval must be at least %d seconds, got %d", MinPollInterval, i.PollInterval)
	}
	if i.DurationUpdateInterval < MinDurationUpdateInterval {
		return fmt.Errorf("duration_update_interval must be at least %d second, got %d", MinDurationUpdateInterval, i.DurationUpdateInterval)
	}
	if i.AutosaveInterval < MinAutosaveInterval {
		return fmt.Errorf("autosave_interval must be at least %d seconds, got %d", MinAutosaveInterval, i.AutosaveInterval)
	}
	return nil
}

// Poll returns the liveness scan period.
func (i Intervals) Poll() time.Duration { return Seconds(i.PollInterval) }

// DurationUpdate returns the accrual period.
func (i Intervals) DurationUpdate() time.Duration { return Seconds(i.DurationUpdateInterval) }

// Autosave returns the autosave period.
func (i Intervals) Autosave() time.Duration { return Seconds(i.AutosaveInterval) }

// Seconds converts a whole number of seconds to a Duration, clamping values
// that would overflow.
func Seconds(v uint64) time.Duration {
	const maxSeconds = uint64(1<<63-1) / uint64(time.Second)
	if v > maxSeconds {
		v = maxSeconds
	}
	return time.Duration(v) * time.Second
}

// IntervalUpdate carries a partial change to Intervals. Nil fields are left
// as they are.
type IntervalUpdate struct {
	PollInterval           *uint64 `json:"poll_interval,omitempty"`
	DurationUpdateInterval *uint64 `json:"duration_update_interval,omitempty"`
	AutosaveInterval       *uint64 `json:"autosave_interval,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u IntervalUpdate) Empty() bool {
	return u.PollInterval == nil && u.DurationUpdateInterval == nil && u.AutosaveInterval == nil
}

// Apply returns i with the update's fields replaced. The result is
// validated; on error i is returned unchanged.
func (i Intervals) Apply(u IntervalUpdate) (Intervals, error) {
	next := i
	if u.PollInterval != nil {
		next.PollInterval = *u.PollInterval
	}
	if u.DurationUpdateInterval != nil {
		next.DurationUpdateInterval = *u.DurationUpdateInterval
	}
	if u.AutosaveInterval != nil {
		next.AutosaveInterval = *u.AutosaveInterval
	}
	if err := next.Validate(); err != nil {
		return i, err
	}
	return next, nil
}

// DecodeIntervals parses a config.json document. Every field must be present
// and valid.
func DecodeIntervals(r io.Reader) (Intervals, error) {
	var raw struct {
		PollInterval           *uint64 `json:"poll_interval"`
		DurationUpdateInterval *uint64 `json:"duration_update_interval"`
		AutosaveInterval       *uint64 `json:"autosave_interval"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Intervals{}, fmt.Errorf("decode intervals: %w", err)
	}
	if raw.PollInterval == nil || raw.DurationUpdateInterval == nil || raw.AutosaveInterval == nil {
		return Intervals{}, fmt.Errorf("decode intervals: poll_interval, duration_update_interval and autosave_interval are required")
	}
	out := Intervals{
		PollInterval:           *raw.PollInterval,
		DurationUpdateInterval: *raw.DurationUpdateInterval,
		AutosaveInterval:       *raw.AutosaveInterval,
	}
	if err := out.Validate(); err != nil {
		return Intervals{}, err
	}
	return out, nil
}
