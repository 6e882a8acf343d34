package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/channelsync/internal/paging"
	"github.com/five82/channelsync/internal/prefs"
	"github.com/five82/channelsync/internal/remote"
	"github.com/five82/channelsync/internal/state"
)

type fixture struct {
	src       *remote.MemorySource
	ctrl      *paging.Controller
	prefsPath string
}

// newModel opens a 30 item demo collection with 5 item pages in a 20 row
// terminal, which shows 15 rows.
func newModel(t *testing.T, logFile string) (Model, fixture) {
	t.Helper()
	src := remote.DemoSource("c", 30)
	id := state.Identity{CollectionID: "c", PageSize: 5, Sort: "position", Direction: state.DirectionDesc}
	ctrl, err := paging.NewController(src, state.NewStore(), id, paging.Options{})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	f := fixture{src: src, ctrl: ctrl, prefsPath: filepath.Join(t.TempDir(), "prefs.toml")}
	m := New(Options{
		Mutator:   paging.NewMutator(ctrl, paging.MutatorOptions{}),
		Prefs:     prefs.Prefs{Theme: "Slate", Sort: "position", Direction: state.DirectionDesc},
		PrefsPath: f.prefsPath,
		LogFile:   logFile,
	})
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 20})
	ctrl.Wait()
	m = update(m, tickMsg(time.Now()))
	ctrl.Wait()
	m = update(m, tickMsg(time.Now()))
	return m, f
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys string) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return next.(Model), cmd
}

func TestModel_RequestsVisiblePagesAndOneAhead(t *testing.T) {
	m, f := newModel(t, "")

	requested := f.src.PageRequests()
	slices.Sort(requested)
	assert.Equal(t, []int{1, 2, 3, 4}, requested)
	assert.Equal(t, 30, m.snapshot.Count)
	assert.Equal(t, 20, m.snapshot.Resolved())
	assert.Contains(t, m.View(), "c (20/30)")
}

func TestModel_ScrollingRequestsNextPages(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "G")
	f.ctrl.Wait()
	assert.Equal(t, 29, m.cursor)
	assert.Equal(t, 15, m.offset)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, f.ctrl.QueriedPages())
}

func TestModel_MoveDownFollowsItem(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "J")
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "30", m.snapshot.Items[1].ID)
	assert.Equal(t, "29", m.snapshot.Items[0].ID)

	f.ctrl.Wait()
	reorders := f.src.Reorders()
	require.Len(t, reorders, 1)
	assert.Equal(t, state.Reorder{CollectionID: "c", ItemID: "30", Kind: state.KindBlock, Position: 29}, reorders[0])
}

func TestModel_MoveUpAtTopIsNoop(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "K")
	f.ctrl.Wait()
	assert.Equal(t, 0, m.cursor)
	assert.Empty(t, f.src.Reorders())
}

func TestModel_MoveTopAtTopResendsPosition(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "t")
	f.ctrl.Wait()
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "30", m.snapshot.Items[0].ID)
	assert.Equal(t, []state.Reorder{{CollectionID: "c", ItemID: "30", Kind: state.KindBlock, Position: 30}}, f.src.Reorders())
}

func TestModel_HeaderShowsPendingWork(t *testing.T) {
	m, f := newModel(t, "")
	release := make(chan struct{})
	f.src.BeforeFetch = func(state.Identity, int) { <-release }
	defer func() {
		close(release)
		f.ctrl.Wait()
	}()

	m, _ = press(m, "R")
	assert.Contains(t, m.renderHeader(), "4 pending")
}

func TestModel_MoveToBottom(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "b")
	assert.Equal(t, 29, m.cursor)
	assert.Equal(t, "30", m.snapshot.Items[29].ID)

	f.ctrl.Wait()
	reorders := f.src.Reorders()
	require.Len(t, reorders, 1)
	assert.Equal(t, 1, reorders[0].Position)
}

func TestModel_RemoveSelected(t *testing.T) {
	m, f := newModel(t, "")
	f.src.Delete("c", "30")

	m, _ = press(m, "d")
	assert.Equal(t, 29, m.snapshot.Count)
	assert.Equal(t, "29", m.snapshot.Items[0].ID)
	assert.Contains(t, m.notice, "removed 30")

	f.ctrl.Wait()
	m = update(m, tickMsg(time.Now()))
	assert.Equal(t, 29, m.snapshot.Count)
	assert.Equal(t, "29", m.snapshot.Items[0].ID)
}

func TestModel_RefreshItemInPlace(t *testing.T) {
	m, f := newModel(t, "")
	f.src.Replace(remote.NewItem("30", "Text", "Edited"))

	m, cmd := press(m, "r")
	require.NotNil(t, cmd)
	m = update(m, cmd())
	assert.Equal(t, "Edited", m.snapshot.Items[0].Title())
	assert.Equal(t, "refreshed 30", m.notice)
}

func TestModel_RefreshSkipsCollections(t *testing.T) {
	m, _ := newModel(t, "")

	// Demo types cycle Text, Image, Link, Attachment, Channel.
	for range 4 {
		m, _ = press(m, "j")
	}
	require.Equal(t, state.TypeChannel, m.selected().Type)

	m, cmd := press(m, "r")
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.notice)
}

func TestModel_IdentityKeysSwitchViewAndPersist(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "s")
	m, _ = press(m, "o")
	m, _ = press(m, "f")
	f.ctrl.Wait()

	id := f.ctrl.Identity()
	assert.Equal(t, "created_at", id.Sort)
	assert.Equal(t, state.DirectionAsc, id.Direction)
	assert.Equal(t, "Text", id.TypeFilter)
	assert.Equal(t, 0, m.cursor)

	saved, err := prefs.Load(f.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "created_at", saved.Sort)
	assert.Equal(t, state.DirectionAsc, saved.Direction)
	assert.Equal(t, "Text", saved.TypeFilter)
	assert.Equal(t, "Slate", saved.Theme)

	m = update(m, tickMsg(time.Now()))
	assert.Equal(t, 6, m.snapshot.Count)
}

func TestModel_CycleThemePersists(t *testing.T) {
	m, f := newModel(t, "")

	m, _ = press(m, "T")
	assert.Equal(t, "Nightfox", m.theme.Name)

	saved, err := prefs.Load(f.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Nightfox", saved.Theme)
}

func TestModel_StructuralResetReloads(t *testing.T) {
	m, f := newModel(t, "")
	f.src.Prepend("c", remote.NewItem("31", "Image", "New"))

	m, _ = press(m, "G")
	m, _ = press(m, "a")
	f.ctrl.Wait()
	m = update(m, tickMsg(time.Now()))

	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 31, m.snapshot.Count)
	assert.Equal(t, "31", m.snapshot.Items[0].ID)
}

func TestModel_OfflineStopsRequests(t *testing.T) {
	m, f := newModel(t, "")
	f.src.FailWith(errors.New("dial tcp: connection refused"))

	// Two failed refreshes mark the view offline.
	m, _ = press(m, "R")
	f.ctrl.Wait()
	m = update(m, tickMsg(time.Now()))
	f.ctrl.Wait()
	require.True(t, m.snapshot.IsOffline())

	before := len(f.src.PageRequests())
	m = update(m, tickMsg(time.Now()))
	f.ctrl.Wait()
	assert.Equal(t, before, len(f.src.PageRequests()))
	assert.Contains(t, m.renderHeader(), "OFFLINE")
}

func TestModel_QuitAndHelp(t *testing.T) {
	m, _ := newModel(t, "")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	m, _ = press(next.(Model), "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = press(m, "x")
	assert.False(t, m.showHelp)
}

func TestModel_LogView(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "channelsync.log")
	require.NoError(t, os.WriteFile(logFile, []byte(
		"21:01:05 INF session opened identity=c\n21:01:06 DBG page merged page=1\n"), 0o644))
	m, _ := newModel(t, logFile)

	m, cmd := press(m, "l")
	require.NotNil(t, cmd)
	assert.Equal(t, ViewLogs, m.currentView)
	m = update(m, cmd())

	require.Len(t, m.logState.lines, 2)
	view := m.View()
	assert.Contains(t, view, "merged")
	assert.Contains(t, view, "FOLLOWING")

	m, _ = press(m, " ")
	assert.False(t, m.logState.follow)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewItems, next.(Model).currentView)
}

func TestModel_LogViewNeedsLogFile(t *testing.T) {
	m, _ := newModel(t, "")

	m, cmd := press(m, "l")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewItems, m.currentView)
	assert.NotEmpty(t, m.notice)
}

func TestFormatRow_Placeholder(t *testing.T) {
	m, _ := newModel(t, "")

	row := m.formatRow(25, nil, 2, 80, m.theme.FocusBg, false)
	assert.Contains(t, row, "26")
	assert.Contains(t, row, "···")

	item := remote.NewItem("7", "Link", "A link")
	row = m.formatRow(3, &item, 2, 80, m.theme.FocusBg, false)
	for _, want := range []string{" 4", "Link", "7", "A link"} {
		assert.True(t, strings.Contains(row, want), fmt.Sprintf("row %q missing %q", row, want))
	}
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "OFFLINE"},
		{fmt.Errorf("get: %w", remote.ErrCircuitOpen), "CIRCUIT OPEN"},
		{fmt.Errorf("get: %w", remote.ErrNotFound), "NOT FOUND"},
		{errors.New("dial tcp: connection refused"), "OFFLINE"},
		{errors.New("lookup api: no such host"), "HOST NOT FOUND"},
		{errors.New("context deadline exceeded"), "TIMEOUT"},
		{errors.New("boom"), "ERROR"},
	}
	for _, tt := range tests {
		if got := classifyConnectionError(tt.err); got != tt.want {
			t.Errorf("classifyConnectionError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
