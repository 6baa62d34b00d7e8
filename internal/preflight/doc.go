// Package preflight provides readiness checks for the filesystem paths and
// system facilities proctrack depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll before loading state and refuses to start when
//     a check fails, so a read-only data directory is reported up front
//     instead of on the first autosave.
//   - The CLI "proctrack status" command uses the individual check functions
//     to display environment health alongside the daemon state.
package preflight
