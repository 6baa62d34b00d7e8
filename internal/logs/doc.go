// Package logs reads the daemon log file for `proctrack logs`.
//
// Last returns the trailing lines with bounded memory; Follow polls from an
// offset and emits complete lines as the daemon appends them until the
// context ends.
package logs
