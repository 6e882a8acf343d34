package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the palette of the browser. Surfaces go from Background
// (outermost) to FocusBg (active panel); Selection* paint the cursor row.
type Theme struct {
	Name string

	Background, Surface, SurfaceAlt, FocusBg string
	SelectionBg, SelectionText               string
	Border, BorderFocus                      string

	Text, Muted, Faint, Accent     string
	Success, Warning, Danger, Info string

	// TypeColors tint the type column by item type. Unknown types use
	// Muted.
	TypeColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	panel := func(bg, text string) lipgloss.Style {
		return fg(text).Background(lipgloss.Color(bg))
	}

	return Styles{
		Background: lipgloss.NewStyle().Background(lipgloss.Color(t.Background)),
		Surface:    panel(t.Surface, t.Text),
		SurfaceAlt: panel(t.SurfaceAlt, t.Text),

		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   panel(t.Surface, t.Text).Padding(0, 1),
		Footer:   panel(t.Surface, t.Muted).Padding(0, 1),
		Logo:     fg(t.Warning).Bold(true),
		Selected: panel(t.SelectionBg, t.SelectionText),

		typeColors: t.TypeColors,
		muted:      t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background, Surface, SurfaceAlt lipgloss.Style

	Text, MutedText, FaintText, AccentText lipgloss.Style
	SuccessText, WarningText, DangerText   lipgloss.Style
	InfoText                               lipgloss.Style

	Header, Footer, Logo, Selected lipgloss.Style

	typeColors map[string]string
	muted      string
}

// TypeStyle returns the foreground style for an item type.
func (s Styles) TypeStyle(typ string) lipgloss.Style {
	color, ok := s.typeColors[typ]
	if !ok || color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// LevelStyle returns the style for a zerolog console level such as INF.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "DBG", "TRC":
		return s.InfoText
	case "INF":
		return s.SuccessText
	case "WRN":
		return s.WarningText
	case "ERR", "FTL", "PNC":
		return s.DangerText
	}
	return s.Text
}

// WithBackground returns a copy of s whose styles all paint bgColor.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Background, &out.Surface, &out.SurfaceAlt,
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo, &out.Selected,
	} {
		*st = st.Background(bg)
	}
	return out
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// typeColors maps the item types in order Text, Image, Link, Attachment,
// Media, Channel.
func typeColors(colors ...string) map[string]string {
	out := make(map[string]string, len(colors))
	for i, typ := range typeFilters[1:] {
		if i < len(colors) {
			out[typ] = colors[i]
		}
	}
	return out
}

// https://github.com/EdenEast/nightfox.nvim
func nightfoxTheme() Theme {
	return Theme{
		Name: "Nightfox",
		Background: "#131a24", Surface: "#192330", SurfaceAlt: "#212e3f", FocusBg: "#29394f",
		SelectionBg: "#2b3b51", SelectionText: "#cdcecf",
		Border: "#39506d", BorderFocus: "#719cd6",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b", Accent: "#719cd6",
		Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d", Info: "#63cdcf",
		TypeColors: typeColors("#cdcecf", "#9d79d6", "#719cd6", "#f4a261", "#63cdcf", "#81b29a"),
	}
}

// https://github.com/rebelot/kanagawa.nvim
func kanagawaTheme() Theme {
	return Theme{
		Name: "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", SurfaceAlt: "#2A2A37", FocusBg: "#2A2A37",
		SelectionBg: "#2D4F67", SelectionText: "#DCD7BA",
		Border: "#54546D", BorderFocus: "#7E9CD8",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169", Accent: "#7E9CD8",
		Success: "#98BB6C", Warning: "#E6C384", Danger: "#E46876", Info: "#7FB4CA",
		TypeColors: typeColors("#DCD7BA", "#957FB8", "#7E9CD8", "#E6C384", "#7FB4CA", "#98BB6C"),
	}
}

// Tailwind slate and sky scales.
func slateTheme() Theme {
	return Theme{
		Name: "Slate",
		Background: "#020617", Surface: "#0f172a", SurfaceAlt: "#1e293b", FocusBg: "#283548",
		SelectionBg: "#0284c7", SelectionText: "#f8fafc",
		Border: "#334155", BorderFocus: "#38bdf8",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b", Accent: "#38bdf8",
		Success: "#22c55e", Warning: "#f59e0b", Danger: "#ef4444", Info: "#06b6d4",
		TypeColors: typeColors("#f1f5f9", "#a78bfa", "#38bdf8", "#f59e0b", "#22d3ee", "#22c55e"),
	}
}
