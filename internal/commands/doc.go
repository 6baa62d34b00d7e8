// Package commands implements the daemon's request handlers.
//
// Table maps each ipc.Kind to a Handler that decodes its own payload and
// works against the shared state.Store. Input is parsed and validated before
// any write lock is taken, so a rejected request leaves the registry and
// intervals untouched. Dispatcher adapts the table to ipc.Handler and wires
// the quit request to the daemon's shutdown hook.
package commands
