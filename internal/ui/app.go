package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/insight/internal/lifecycle"
	"github.com/five82/insight/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *lifecycle.Controller
	Logger     *log.Logger
	Endpoint   string
	LogPath    string
	PrefsPath  string
	Prefs      prefs.Prefs
	InitialURL string
	Notice     string // shown under the form until cleared
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	controller *lifecycle.Controller
	logger     *log.Logger
	endpoint   string
	logPath    string
	prefsPath  string
	prefs      prefs.Prefs

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Form state
	input      textinput.Model
	spinner    spinner.Model
	pendingURL string

	// Log panel
	showLogs    bool
	logGen      int
	logLines    []string
	logViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "https://example.com"
	input.Prompt = ""
	input.CharLimit = 2048
	input.Width = 60
	initial := strings.TrimSpace(opts.InitialURL)
	if initial == "" {
		initial = opts.Prefs.LastURL
	}
	input.SetValue(initial)
	input.Focus()

	theme := GetTheme(opts.Prefs.Theme)

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = theme.Styles().InfoText

	return Model{
		ctx:         ctx,
		controller:  opts.Controller,
		logger:      logger,
		endpoint:    opts.Endpoint,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		prefs:       opts.Prefs,
		notice:      opts.Notice,
		theme:       theme,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		input:       input,
		spinner:     spin,
		logViewport: viewport.New(76, 8),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case outcomeMsg:
		return m.handleOutcome(msg)

	case spinner.TickMsg:
		if m.status() != lifecycle.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case logLinesMsg:
		return m.handleLogLines(msg)

	case logTickMsg:
		return m.handleLogTick(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	screen := Present(m.controller.State())

	sections := []string{
		m.renderHeader(screen),
		m.renderForm(screen),
		m.renderBody(screen),
	}
	if m.showLogs {
		sections = append(sections, m.renderLogs())
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.setTheme(GetTheme(NextTheme(m.theme.Name)))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.showLogs {
			m.showLogs = false
			return m, nil
		}
		return m.openLogs()

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		if !m.showLogs {
			return m, nil
		}
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	if m.status() == lifecycle.StatusLoading {
		// The form is disabled until the outstanding attempt resolves.
		if key.Matches(msg, m.keys.Clear) && m.showLogs {
			m.showLogs = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		switch {
		case m.input.Value() != "":
			m.input.SetValue("")
		case m.showLogs:
			m.showLogs = false
		}
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the controller and, when accepted, starts the
// transport call and the spinner.
func (m Model) submit() (tea.Model, tea.Cmd) {
	pending, err := m.controller.Submit(m.ctx, m.input.Value())
	switch {
	case errors.Is(err, lifecycle.ErrBlankURL):
		m.notice = "Enter a URL to analyze."
		return m, nil
	case errors.Is(err, lifecycle.ErrInFlight):
		return m, nil
	case err != nil:
		m.notice = err.Error()
		return m, nil
	}

	m.notice = ""
	m.pendingURL = pending.URL
	m.input.Blur()
	m.prefs.LastURL = pending.URL
	m.savePrefs()

	return m, tea.Batch(waitCmd(pending), m.spinner.Tick)
}

func (m Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	if !m.controller.Resolve(lifecycle.Outcome(msg)) {
		return m, nil
	}
	m.pendingURL = ""
	return m, m.input.Focus()
}

func (m *Model) setTheme(theme Theme) {
	m.theme = theme
	m.spinner.Style = theme.Styles().InfoText
	if m.showLogs {
		m.logViewport.SetContent(m.colorizeLogs())
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	m.prefs.Theme = m.theme.Name
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m *Model) resize() {
	width := m.contentWidth()
	m.input.Width = max(width-12, 10)
	m.help.Width = m.width
	m.logViewport.Width = max(width-4, 10)
	m.logViewport.Height = max(m.height/3, 4)
	m.logViewport.SetContent(m.colorizeLogs())
}

func (m Model) status() lifecycle.Status {
	return m.controller.State().Status()
}

// Messages

type outcomeMsg lifecycle.Outcome

// Commands

// waitCmd performs the transport call off the update loop and reports the
// outcome back as a message.
func waitCmd(p *lifecycle.Pending) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(p.Wait())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		// Shutdown by signal
		return nil
	}
	return err
}
