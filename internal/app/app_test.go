package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/channelsync/internal/paging"
	"github.com/five82/channelsync/internal/remote"
	"github.com/five82/channelsync/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestOpen_DemoSession(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sess, err := Open(Options{
		ConfigPath: writeConfig(t, "page_size = 10\n"),
		PrefsPath:  filepath.Join(home, "prefs.toml"),
		Demo:       true,
	})
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	id := sess.Controller.Identity()
	assert.Equal(t, demoCollection, id.CollectionID)
	assert.Equal(t, 10, id.PageSize)
	assert.Equal(t, "position", id.Sort)
	assert.Equal(t, state.DirectionDesc, id.Direction)
	assert.IsType(t, &remote.MemorySource{}, sess.Source)

	require.NoError(t, sess.Controller.FetchPage(context.Background(), 1))
	snap := sess.Controller.Snapshot()
	assert.Equal(t, demoItems, snap.Count)
	assert.Len(t, snap.Items, 10)
}

func TestOpen_OverridesCollection(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sess, err := Open(Options{
		ConfigPath: writeConfig(t, `collection = "from-config"`+"\n"),
		PrefsPath:  filepath.Join(home, "prefs.toml"),
		Collection: "from-flag",
		APIURL:     "http://127.0.0.1:1",
		Console:    true,
	})
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	assert.Equal(t, "from-flag", sess.Controller.Identity().CollectionID)
	assert.Equal(t, "http://127.0.0.1:1", sess.Config.APIURL)
	assert.IsType(t, &remote.Client{}, sess.Source)
}

func TestOpen_RequiresCollection(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := Open(Options{
		ConfigPath: writeConfig(t, ""),
		PrefsPath:  filepath.Join(home, "prefs.toml"),
		Console:    true,
	})
	assert.True(t, errors.Is(err, ErrNoCollection), "err = %v", err)
}

func TestRefresh_FetchesFirstPageWhenNothingRequested(t *testing.T) {
	src := remote.DemoSource("c", 5)
	ctrl, err := paging.NewController(src, state.NewStore(), state.Identity{CollectionID: "c", PageSize: 2}, paging.Options{})
	require.NoError(t, err)
	defer ctrl.Close()

	failures := refresh(context.Background(), ctrl, zerolog.Nop())
	assert.Zero(t, failures)
	assert.Equal(t, []int{1}, ctrl.QueriedPages())
	assert.Equal(t, 5, ctrl.Count())
}

func TestRefresh_ReportsConsecutiveFailures(t *testing.T) {
	src := remote.DemoSource("c", 5)
	ctrl, err := paging.NewController(src, state.NewStore(), state.Identity{CollectionID: "c", PageSize: 2}, paging.Options{})
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.FetchPage(context.Background(), 1))
	require.NoError(t, ctrl.FetchPage(context.Background(), 2))

	src.FailWith(errors.New("offline"))
	failures := refresh(context.Background(), ctrl, zerolog.Nop())
	assert.Equal(t, 2, failures)
	assert.True(t, ctrl.Snapshot().IsOffline())

	src.FailWith(nil)
	assert.Zero(t, refresh(context.Background(), ctrl, zerolog.Nop()))
}
