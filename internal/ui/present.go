package ui

import (
	"fmt"
	"strings"

	"github.com/five82/insight/internal/insight"
	"github.com/five82/insight/internal/lifecycle"
)

// TitlePlaceholder stands in for an empty page title.
const TitlePlaceholder = "No title"

// Screen is everything a renderer needs for one lifecycle state.
type Screen struct {
	Status  lifecycle.Status
	Form    FormView
	Spinner bool
	Results *ResultsView
	Error   *ErrorView
}

// FormView describes the URL form.
type FormView struct {
	Enabled bool
}

// HeadingCell is one column of the headings table.
type HeadingCell struct {
	Label string
	Count int
}

// ResultsView is the rendered form of an AnalyzeResponse.
type ResultsView struct {
	HTMLVersion       string
	Title             string
	TitleMissing      bool
	Headings          [6]HeadingCell
	InternalLinks     int
	ExternalLinks     int
	InaccessibleLinks int
	HasLoginForm      bool
	LoginBadge        string
}

// HeadingCounts returns the h1..h6 counts in order.
func (r ResultsView) HeadingCounts() [6]int {
	var out [6]int
	for i, cell := range r.Headings {
		out[i] = cell.Count
	}
	return out
}

// ErrorView is the rendered form of an ErrorResponse.
type ErrorView struct {
	StatusCode int
	Message    string
	Headline   string
	Transport  bool
}

// Present maps a lifecycle state to its screen. It has no side effects.
func Present(state lifecycle.State) Screen {
	switch s := state.(type) {
	case lifecycle.Loading:
		return Screen{Status: lifecycle.StatusLoading, Form: FormView{Enabled: false}, Spinner: true}
	case lifecycle.Success:
		results := presentResults(s.Data)
		return Screen{Status: lifecycle.StatusSuccess, Form: FormView{Enabled: true}, Results: &results}
	case lifecycle.Failure:
		view := presentError(s.Err)
		return Screen{Status: lifecycle.StatusError, Form: FormView{Enabled: true}, Error: &view}
	default:
		return Screen{Status: lifecycle.StatusIdle, Form: FormView{Enabled: true}}
	}
}

func presentResults(data insight.AnalyzeResponse) ResultsView {
	view := ResultsView{
		HTMLVersion:       data.HTMLVersion,
		Title:             data.Title,
		InternalLinks:     data.InternalLinks,
		ExternalLinks:     data.ExternalLinks,
		InaccessibleLinks: data.InaccessibleLinks,
		HasLoginForm:      data.HasLoginForm,
		LoginBadge:        yesNo(data.HasLoginForm),
	}
	if strings.TrimSpace(data.Title) == "" {
		view.Title = TitlePlaceholder
		view.TitleMissing = true
	}
	for i, level := range insight.HeadingLevels {
		view.Headings[i] = HeadingCell{
			Label: strings.ToUpper(level),
			Count: data.HeadingCount(level),
		}
	}
	return view
}

func presentError(err insight.ErrorResponse) ErrorView {
	return ErrorView{
		StatusCode: err.StatusCode,
		Message:    err.Message,
		Headline:   fmt.Sprintf("Error %d: %s", err.StatusCode, err.Message),
		Transport:  err.IsTransportFailure(),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// PlainText renders a screen without styling, for non-interactive output.
func PlainText(screen Screen) string {
	var b strings.Builder
	switch {
	case screen.Spinner:
		b.WriteString("Analyzing...\n")
	case screen.Results != nil:
		r := screen.Results
		fmt.Fprintf(&b, "HTML Version:        %s\n", r.HTMLVersion)
		fmt.Fprintf(&b, "Page Title:          %s\n", r.Title)
		b.WriteString("Headings:           ")
		for _, cell := range r.Headings {
			fmt.Fprintf(&b, " %s=%d", cell.Label, cell.Count)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Internal Links:      %d\n", r.InternalLinks)
		fmt.Fprintf(&b, "External Links:      %d\n", r.ExternalLinks)
		fmt.Fprintf(&b, "Inaccessible Links:  %d\n", r.InaccessibleLinks)
		fmt.Fprintf(&b, "Login Form:          %s\n", r.LoginBadge)
	case screen.Error != nil:
		b.WriteString(screen.Error.Headline)
		b.WriteString("\n")
	}
	return b.String()
}
