// Package app is the composition root for insight.
//
// It loads config.toml, opens the log file, builds the insight.Client and
// the lifecycle.Controller, and then hands them to one of two front ends:
//
//   - Run starts the Bubble Tea TUI and blocks until the user quits or the
//     context is cancelled.
//   - Analyze performs a single analysis without the TUI and returns a
//     process exit code (0 success, 1 error, 2 blank URL).
//
// Startup failures (unreadable config, invalid service URL) are returned
// from Run or printed by Analyze. Failures of the analysis itself are not
// errors here: they are lifecycle states, rendered like any other result.
package app
