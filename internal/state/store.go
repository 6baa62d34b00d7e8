package state

import (
	"sync"

	"proctrack/internal/config"
	"proctrack/internal/process"
)

// Store holds the two independently guarded values shared by the daemon.
type Store struct {
	cfgMu sync.RWMutex
	cfg   config.Intervals

	regMu sync.RWMutex
	reg   *process.Registry
}

// NewStore wraps the given intervals and registry. A nil registry is
// replaced with an empty one.
func NewStore(cfg config.Intervals, reg *process.Registry) *Store {
	if reg == nil {
		reg = process.NewRegistry(nil)
	}
	return &Store{cfg: cfg, reg: reg}
}

// ReadConfig calls fn with the current intervals under the read lock.
func (s *Store) ReadConfig(fn func(config.Intervals)) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	fn(s.cfg)
}

// WriteConfig calls fn with exclusive access to the intervals. Changes made
// by fn are kept even when it returns an error, so fn should validate before
// assigning.
func (s *Store) WriteConfig(fn func(*config.Intervals) error) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	return fn(&s.cfg)
}

// ReadRegistry calls fn with the registry under the read lock. fn must not
// mutate the registry or retain it after returning.
func (s *Store) ReadRegistry(fn func(*process.Registry) error) error {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return fn(s.reg)
}

// WriteRegistry calls fn with exclusive access to the registry.
func (s *Store) WriteRegistry(fn func(*process.Registry) error) error {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	return fn(s.reg)
}

// Config returns a copy of the current intervals.
func (s *Store) Config() config.Intervals {
	var out config.Intervals
	s.ReadConfig(func(c config.Intervals) { out = c })
	return out
}

// Processes returns a copy of the registry entries in order.
func (s *Store) Processes() []process.Process {
	var out []process.Process
	_ = s.ReadRegistry(func(r *process.Registry) error {
		out = r.Processes()
		return nil
	})
	return out
}
