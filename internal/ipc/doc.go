// Package ipc carries proctrack requests between the CLI and the daemon over
// a Unix domain socket.
//
// A client writes one JSON request tagged by its kind, half-closes the
// connection and reads until EOF. The server reads the request (bounded in
// size and time), passes it to a Handler and writes a single {"Ok":...} or
// {"Err":...} envelope. Every connection is served by its own goroutine and
// logged under a fresh request ID.
package ipc
