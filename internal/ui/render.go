package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/insight/internal/lifecycle"
)

// renderHeader renders the top bar: logo, status chip, endpoint and theme.
func (m Model) renderHeader(screen Screen) string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{
		styles.Logo.Render("insight"),
		styles.StatusStyle(screen.Status.String()).Render(strings.ToUpper(screen.Status.String())),
	}
	if m.endpoint != "" {
		parts = append(parts,
			styles.MutedText.Render("service")+" "+styles.Text.Render(truncateMiddle(m.endpoint, 48)))
	}
	parts = append(parts, styles.AccentText.Render("theme")+" "+styles.FaintText.Render(m.theme.Name))

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderForm renders the URL input row and any notice under it.
func (m Model) renderForm(screen Screen) string {
	styles := m.theme.Styles()

	label := styles.AccentText.Bold(true).Render("URL")
	if !screen.Form.Enabled {
		label = styles.FaintText.Render("URL")
	}
	row := label + " " + m.input.View()

	var b strings.Builder
	b.WriteString(styles.Panel.Width(m.contentWidth()).Render(row))
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(" " + m.notice))
	}
	return b.String()
}

// renderBody renders the part of the screen that depends on the lifecycle.
func (m Model) renderBody(screen Screen) string {
	styles := m.theme.Styles()

	switch screen.Status {
	case lifecycle.StatusLoading:
		target := truncateMiddle(m.pendingURL, m.contentWidth()-20)
		return " " + m.spinner.View() + " " + styles.InfoText.Render("Analyzing "+target+"...")
	case lifecycle.StatusSuccess:
		return m.renderResults(*screen.Results)
	case lifecycle.StatusError:
		return m.renderError(*screen.Error)
	default:
		return styles.MutedText.Render(" Enter a page URL and press enter to analyze it.")
	}
}

// renderResults renders the summary, headings and links tables.
func (m Model) renderResults(r ResultsView) string {
	styles := m.theme.Styles()

	titleStyle := styles.Text
	if r.TitleMissing {
		titleStyle = styles.FaintText.Italic(true)
	}
	badge := styles.StatusStyle(strings.ToLower(r.LoginBadge)).Render(r.LoginBadge)

	summary := lipgloss.JoinVertical(lipgloss.Left,
		m.field("HTML Version", styles.Text.Render(r.HTMLVersion)),
		m.field("Page Title", titleStyle.Render(truncate(r.Title, m.contentWidth()-20))),
		m.field("Login Form", badge),
	)

	headers := make([]string, len(r.Headings))
	counts := make([]string, len(r.Headings))
	for i, cell := range r.Headings {
		headers[i] = cell.Label
		counts[i] = strconv.Itoa(cell.Count)
	}
	headings := m.newTable().Headers(headers...).Row(counts...)

	links := m.newTable().
		Headers("Internal", "External", "Inaccessible").
		Row(
			strconv.Itoa(r.InternalLinks),
			strconv.Itoa(r.ExternalLinks),
			strconv.Itoa(r.InaccessibleLinks),
		)

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Panel.Width(m.contentWidth()).Render(summary),
		m.section("Headings", headings.Render()),
		m.section("Links", links.Render()),
	)
}

// renderError renders the failure panel.
func (m Model) renderError(e ErrorView) string {
	styles := m.theme.Styles()

	lines := []string{styles.DangerText.Render(e.Headline)}
	if e.Transport {
		lines = append(lines, styles.MutedText.Render("The analysis service could not be reached or sent an unreadable reply."))
	}
	return styles.ErrorPanel.Width(m.contentWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) field(label, value string) string {
	styles := m.theme.Styles()
	return styles.MutedText.Width(16).Render(label) + value
}

func (m Model) section(title, body string) string {
	styles := m.theme.Styles()
	return styles.AccentText.Bold(true).Render(" "+title) + "\n" + body
}

func (m Model) newTable() *table.Table {
	styles := m.theme.Styles()
	header := styles.AccentText.Bold(true).Padding(0, 1).Align(lipgloss.Center)
	cell := styles.Text.Padding(0, 1).Align(lipgloss.Center)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 2
}
