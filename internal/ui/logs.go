package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/channelsync/internal/logtail"
)

const logTailLines = 500

// logState holds the log view buffer.
type logState struct {
	lines  []string
	follow bool
	err    error
}

type logLinesMsg []string

type logErrorMsg struct{ err error }

// resizeLogViewport fits the viewport inside the log box.
func (m *Model) resizeLogViewport() {
	w, h := max(m.width-2, 1), max(m.height-5, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(w, h)
	} else {
		m.logViewport.Width = w
		m.logViewport.Height = h
	}
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// refreshLogs reads the tail of the log file in the background.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logFile
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(lines)
	}
}

func (m *Model) handleLogLines(lines logLinesMsg) {
	m.logState.lines = lines
	m.logState.err = nil
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Log " + truncate(m.logFile, max(m.width-12, 8))
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, m.height-3, true)
	return box + "\n" + m.renderLogStatus()
}

func (m Model) renderLogStatus() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	follow := bg.Render("PAUSED", styles.WarningText)
	if m.logState.follow {
		follow = bg.Render("FOLLOWING", styles.SuccessText)
	}
	parts := []string{
		follow,
		bg.Render("Lines", styles.MutedText) + bg.Space() + bg.Render(itoa(len(m.logState.lines)), styles.Text),
	}
	if m.logState.err != nil {
		parts = append(parts, bg.Render(truncate(m.logState.err.Error(), 60), styles.DangerText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderLogContent colors each line by its parsed parts.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.logState.lines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	out := make([]byte, 0, len(m.logState.lines)*80)
	for i, raw := range m.logState.lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, bg.FillLine(m.colorizeLogLine(logtail.Parse(raw), styles, bg), width)...)
	}
	return string(out)
}

func (m Model) colorizeLogLine(line logtail.Line, styles Styles, bg BgStyle) string {
	if line.Level == "" {
		return bg.Render(line.Message, styles.Text)
	}
	out := bg.Render(line.Time, styles.FaintText) + bg.Space() +
		bg.Render(line.Level, styles.LevelStyle(line.Level).Bold(true))
	if line.Message != "" {
		out += bg.Space() + bg.Render(line.Message, styles.Text)
	}
	if line.Fields != "" {
		out += bg.Space() + bg.Render(line.Fields, styles.MutedText)
	}
	return out
}
