// Package daemon coordinates the long-running proctrack process.
//
// A Daemon owns the instance lock and three background loops over the shared
// state.Store: the liveness poller marks tracked processes running or not from
// an OS scan, the accrual loop adds elapsed seconds to running tracked
// processes, and the autosaver asks the state writer to persist both files.
// All loops stop when the daemon context is cancelled.
package daemon
