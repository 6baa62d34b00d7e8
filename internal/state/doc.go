// Package state owns the daemon's shared mutable data and its on-disk form.
//
// Store keeps the tracking intervals and the process registry behind two
// independent reader/writer locks. Callers reach either value only through
// scoped closures, and no closure ever holds both locks, so the background
// loops and request handlers cannot deadlock on each other.
//
// Files and Load read config.json and processes.json from the data directory.
// Writer is the single goroutine that writes them back: autosave, quit and
// signal shutdown all submit requests to it instead of writing directly.
package state
