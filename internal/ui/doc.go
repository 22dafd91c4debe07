// Package ui provides the Bubble Tea terminal interface for insight.
//
// The Model owns the view state and a lifecycle.Controller. Submitting the
// URL form asks the controller for a Pending attempt; the blocking transport
// call runs as a tea.Cmd and its outcome comes back to Update as a message,
// where the controller resolves it. Only Update mutates the Model.
//
// Present maps a lifecycle.State to a Screen independent of styling, so the
// same mapping drives both the TUI and the plain-text output of headless
// runs.
//
// Key bindings:
//
//   - enter: Analyze the URL in the form
//   - esc: Clear the input, or close the log panel
//   - ctrl+l: Toggle the log panel (pgup/pgdown scroll it)
//   - ctrl+t: Cycle theme (saved to prefs.toml)
//   - f1: Toggle help
//   - ctrl+c: Quit
package ui
