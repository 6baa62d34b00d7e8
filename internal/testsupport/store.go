package testsupport

import (
	"testing"

	"proctrack/internal/config"
	"proctrack/internal/process"
	"proctrack/internal/state"
)

// NewStore returns a store with default intervals and one tracked process
// per name, in order.
func NewStore(t testing.TB, names ...string) *state.Store {
	t.Helper()

	reg := process.NewRegistry(nil)
	for _, name := range names {
		if err := reg.Add(process.New(name)); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return state.NewStore(config.DefaultIntervals(), reg)
}

// Names lists the registry's process names in ID order.
func Names(t testing.TB, store *state.Store) []string {
	t.Helper()

	procs := store.Processes()
	names := make([]string, len(procs))
	for i, p := range procs {
		names[i] = p.Name
	}
	return names
}
