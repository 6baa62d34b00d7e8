// Command proctrack is the front end for the proctrack daemon.
//
// Every tracking command is a single request over the daemon's Unix socket.
// The daemon itself runs through the hidden "daemon" subcommand, which
// "proctrack start" launches in the background.
package main
