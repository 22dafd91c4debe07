package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/insight/internal/logtail"
)

const (
	logTailLines    = 200
	logRefreshEvery = time.Second
)

// Log messages carry the panel generation so reads scheduled before the
// panel was closed and reopened are dropped.
type logLinesMsg struct {
	gen   int
	lines []string
	err   error
}

type logTickMsg struct {
	gen int
}

func loadLogsCmd(path string, gen int) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{gen: gen, lines: lines, err: err}
	}
}

func logTickCmd(gen int) tea.Cmd {
	return tea.Tick(logRefreshEvery, func(time.Time) tea.Msg {
		return logTickMsg{gen: gen}
	})
}

// handleLogLines shows a fresh read and schedules the next one while the
// panel stays open.
func (m Model) handleLogLines(msg logLinesMsg) (tea.Model, tea.Cmd) {
	if !m.showLogs || msg.gen != m.logGen {
		return m, nil
	}
	follow := m.logViewport.AtBottom()
	if msg.err != nil {
		m.logLines = []string{"unable to read log: " + msg.err.Error()}
	} else {
		m.logLines = msg.lines
	}
	m.logViewport.SetContent(m.colorizeLogs())
	if follow {
		m.logViewport.GotoBottom()
	}
	return m, logTickCmd(m.logGen)
}

func (m Model) handleLogTick(msg logTickMsg) (tea.Model, tea.Cmd) {
	if !m.showLogs || msg.gen != m.logGen {
		return m, nil
	}
	return m, loadLogsCmd(m.logPath, m.logGen)
}

func (m Model) openLogs() (tea.Model, tea.Cmd) {
	m.showLogs = true
	m.logGen++
	m.logViewport.GotoBottom()
	return m, loadLogsCmd(m.logPath, m.logGen)
}

func (m Model) colorizeLogs() string {
	if len(m.logLines) == 0 {
		return m.theme.Styles().FaintText.Render("No log entries yet.")
	}
	styles := m.theme.Styles()
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		var style lipgloss.Style
		switch logtail.Level(line) {
		case "error", "fatal":
			style = styles.DangerText
		case "warn":
			style = styles.WarningText
		case "debug":
			style = styles.FaintText
		default:
			style = styles.Text
		}
		out[i] = style.Render(truncate(line, m.logViewport.Width))
	}
	return strings.Join(out, "\n")
}

// renderLogs renders the log panel below the main content.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render(" Log") + " " + styles.FaintText.Render(truncateMiddle(m.logPath, 60))
	return title + "\n" + styles.Panel.Width(m.contentWidth()).Render(m.logViewport.View())
}
