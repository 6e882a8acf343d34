package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesColorEveryItemType(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, typ := range typeFilters[1:] {
			if th.TypeColors[typ] == "" {
				t.Fatalf("%s has no color for %s", name, typ)
			}
		}
	}
}

func TestTypeStyle_FallsBackToMuted(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	if got := styles.TypeStyle("Image").GetForeground(); got != lipgloss.Color(th.TypeColors["Image"]) {
		t.Fatalf("TypeStyle(Image) = %v, want %v", got, th.TypeColors["Image"])
	}
	if got := styles.TypeStyle("Unknown").GetForeground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("TypeStyle(Unknown) = %v, want %v", got, th.Muted)
	}
	if got := styles.WithBackground(th.Surface).TypeStyle("Unknown").GetForeground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("WithBackground lost the muted fallback: %v", got)
	}
}

func TestLevelStyle(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	tests := map[string]string{
		"INF": th.Success,
		"WRN": th.Warning,
		"ERR": th.Danger,
		"DBG": th.Info,
		"???": th.Text,
	}
	for level, want := range tests {
		if got := styles.LevelStyle(level).GetForeground(); got != lipgloss.Color(want) {
			t.Fatalf("LevelStyle(%s) = %v, want %v", level, got, want)
		}
	}
}
