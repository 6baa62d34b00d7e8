// Package config loads, normalizes, and validates proctrack configuration.
//
// Two kinds of settings live here. Config is the bootstrap TOML read once by
// the daemon and the CLI: where the data directory and socket live and how
// logs are shaped. Intervals is the runtime tracking cadence persisted as
// JSON in the data directory, changed through the daemon and checked against
// fixed minimums wherever it is loaded or updated.
package config
