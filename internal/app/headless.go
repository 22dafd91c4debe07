package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"

	"github.com/five82/insight/internal/lifecycle"
	"github.com/five82/insight/internal/logging"
	"github.com/five82/insight/internal/ui"
)

// Exit codes for headless runs.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitBlankURL = 2
)

// Analyze runs one analysis of opts.URL without the TUI, writes the result
// to stdout (or the failure headline to stderr) and returns the exit code.
func Analyze(ctx context.Context, opts Options) int {
	out, errOut := stdout(opts), stderr(opts)

	rt, err := setup(opts, logging.Stderr)
	if err != nil {
		fmt.Fprintf(errOut, "insight: %v\n", err)
		return ExitError
	}
	defer rt.Close()

	stop := startSpinner(errOut, opts.URL)
	state, err := rt.controller.Run(ctx, opts.URL)
	stop()

	switch {
	case errors.Is(err, lifecycle.ErrBlankURL):
		fmt.Fprintln(errOut, "insight: enter a URL to analyze")
		return ExitBlankURL
	case err != nil:
		fmt.Fprintf(errOut, "insight: %v\n", err)
		return ExitError
	}

	if opts.JSON {
		if err := writeJSON(out, state); err != nil {
			fmt.Fprintf(errOut, "insight: %v\n", err)
			return ExitError
		}
	} else {
		text := ui.PlainText(ui.Present(state))
		if state.Status() == lifecycle.StatusError {
			fmt.Fprint(errOut, text)
		} else {
			fmt.Fprint(out, text)
		}
	}

	if state.Status() != lifecycle.StatusSuccess {
		return ExitError
	}
	return ExitOK
}

func writeJSON(w io.Writer, state lifecycle.State) error {
	var payload any
	switch s := state.(type) {
	case lifecycle.Success:
		payload = s.Data
	case lifecycle.Failure:
		payload = s.Err
	default:
		return fmt.Errorf("no result in state %s", state.Status())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// startSpinner shows progress on w when it is a terminal and returns the
// function that clears it.
func startSpinner(w io.Writer, target string) func() {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " Analyzing " + target
	s.Start()
	return s.Stop
}
