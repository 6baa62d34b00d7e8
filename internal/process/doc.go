// Package process holds the tracked-process data model: the Process record,
// the ordered Registry whose positions are the public IDs, and the parsers
// shared by the daemon and the CLI for durations, dates and ID-set
// expressions.
//
// Nothing here locks or performs I/O; callers serialize access through the
// state package.
package process
