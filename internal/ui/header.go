package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/channelsync/internal/remote"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	parts := []string{bg.Render("channelsync", styles.Logo)}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● "+classifyConnectionError(m.snapshot.LastError), styles.DangerText))
	} else {
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render(m.identity.CollectionID, styles.AccentText),
		bg.Render("Sort:", styles.MutedText)+bg.Space()+
			bg.Render(m.identity.Sort+" "+strings.ToLower(m.identity.Direction), styles.Text),
	)
	if m.identity.TypeFilter != "" {
		parts = append(parts,
			bg.Render("Type:", styles.MutedText)+bg.Space()+
				bg.Render(m.identity.TypeFilter, styles.TypeStyle(m.identity.TypeFilter)))
	}
	parts = append(parts,
		bg.Render("Loaded:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d/%d", m.snapshot.Resolved(), m.snapshot.Count), styles.Text))

	if m.ctrl != nil && m.ctrl.Loading() {
		parts = append(parts, bg.Render(m.spinner.View(), styles.InfoText))
	}
	if n := m.pendingTasks(); n > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d pending", n), styles.InfoText))
	}

	if ts := formatTimestamp(m.snapshot.LastUpdated); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.snapshot.LastError != nil {
		limit := 80
		if compact {
			limit = 40
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), limit), styles.DangerText))
	}

	if m.notice != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.notice, styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := time.Since(t)
	s := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// classifyConnectionError returns a short label for a fetch error.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	switch {
	case errors.Is(err, remote.ErrCircuitOpen):
		return "CIRCUIT OPEN"
	case errors.Is(err, remote.ErrNotFound):
		return "NOT FOUND"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewLogs:
		follow := "Pause"
		if !m.logState.follow {
			follow = "Follow"
		}
		commands = []cmd{
			{"Space", follow},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"esc", "Collection"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"d", "Remove"},
			{"J/K", "Move"},
			{"t/b", "Top/Bottom"},
			{"r", "Refresh"},
			{"s", m.identity.Sort},
			{"o", strings.ToLower(m.identity.Direction)},
			{"f", typeLabel(m.identity.TypeFilter)},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

func typeLabel(filter string) string {
	if filter == "" {
		return "All"
	}
	return filter
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func (m Model) pendingTasks() int {
	if m.ctrl == nil {
		return 0
	}
	return m.ctrl.Pending()
}
