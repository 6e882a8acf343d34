package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against the demo collection, whose 120
// items have ids 120 down to 1 and types cycling Text, Image, Link,
// Attachment, Channel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	base := []string{
		"--demo",
		"--config", filepath.Join(home, "config.toml"),
		"--prefs", filepath.Join(home, "prefs.toml"),
	}
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config", "prefs", "api-url", "demo", "verbose", "debug"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
	for _, use := range []string{"browse", "contents", "move", "refresh-item", "version"} {
		found, _, err := cmd.Find([]string{use})
		if err != nil || found.Name() != use {
			t.Errorf("subcommand %s not registered", use)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "channelsync dev\n", out)
}

func TestContents_PrintsMergedPages(t *testing.T) {
	out, err := run(t, "contents", "demo", "--pages", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 49)
	assert.Equal(t, []string{"1", "Text", "120", "Text", "120"}, strings.Fields(lines[0]))
	assert.Equal(t, "48 of 120 loaded", lines[48])
}

func TestContents_TypeFilterAndDirection(t *testing.T) {
	out, err := run(t, "contents", "demo", "--type", "Channel", "--direction", "asc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, "Channel", strings.Fields(lines[0])[1])
	assert.Equal(t, "1", strings.Fields(lines[0])[2])
	assert.Equal(t, "24 of 24 loaded", lines[24])
}

func TestContents_JSON(t *testing.T) {
	out, err := run(t, "contents", "demo", "--json")
	require.NoError(t, err)

	var items []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 24)
	assert.Equal(t, map[string]string{"id": "120", "type": "Text", "title": "Text 120"}, items[0])
}

func TestContents_RejectsBadFlags(t *testing.T) {
	_, err := run(t, "contents", "demo", "--pages", "0")
	assert.Error(t, err)

	_, err = run(t, "contents", "demo", "--direction", "sideways")
	assert.ErrorContains(t, err, "invalid --direction")
}

func TestMove(t *testing.T) {
	out, err := run(t, "move", "demo", "1", "3")
	require.NoError(t, err)
	assert.Equal(t, "moved 120 to 3\n", out)
}

func TestMove_ToLast(t *testing.T) {
	out, err := run(t, "move", "demo", "2", "last")
	require.NoError(t, err)
	assert.Equal(t, "moved 119 to 120\n", out)
}

func TestMove_Rejects(t *testing.T) {
	_, err := run(t, "move", "demo", "0", "3")
	assert.ErrorContains(t, err, "invalid position")

	_, err = run(t, "move", "demo", "500", "1")
	assert.ErrorContains(t, err, "out of range")

	_, err = run(t, "move", "demo", "1", "500")
	assert.ErrorContains(t, err, "cannot move")
}

func TestMove_SamePositionResendsIt(t *testing.T) {
	out, err := run(t, "move", "demo", "4", "4")
	require.NoError(t, err)
	assert.Equal(t, "moved 117 to 4\n", out)
}

func TestRefreshItem(t *testing.T) {
	out, err := run(t, "refresh-item", "demo", "119")
	require.NoError(t, err)
	assert.Equal(t, "refreshed 119 at 2: Image 119\n", out)

	_, err = run(t, "refresh-item", "demo", "116")
	assert.ErrorContains(t, err, "not refreshed")
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		arg       string
		allowLast bool
		want      int
		wantErr   bool
	}{
		{"1", false, 0, false},
		{" 12 ", false, 11, false},
		{"last", true, -1, false},
		{"LAST", true, -1, false},
		{"last", false, 0, true},
		{"0", false, 0, true},
		{"x", true, 0, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.arg, tt.allowLast)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parsePosition(%q, %v) = %d, %v", tt.arg, tt.allowLast, got, err)
		}
	}
}
