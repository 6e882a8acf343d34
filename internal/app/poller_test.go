package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/channelsync/internal/paging"
	"github.com/five82/channelsync/internal/remote"
	"github.com/five82/channelsync/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	base := 3 * time.Second

	for failures, want := range map[int]time.Duration{
		-2: 3 * time.Second,
		0:  3 * time.Second,
		1:  6 * time.Second,
		2:  12 * time.Second,
		3:  24 * time.Second,
		4:  maxBackoff,
		50: maxBackoff,
	} {
		assert.Equal(t, want, calculateBackoff(failures, base), "failures=%d", failures)
	}
}

func TestCalculateBackoff_BaseAboveCap(t *testing.T) {
	assert.Equal(t, time.Minute, calculateBackoff(0, time.Minute))
	assert.Equal(t, maxBackoff, calculateBackoff(1, time.Minute))
}

func newPollerController(t *testing.T) (*paging.Controller, *remote.MemorySource) {
	t.Helper()
	src := remote.DemoSource("c", 7)
	ctrl, err := paging.NewController(src, state.NewStore(), state.Identity{CollectionID: "c", PageSize: 3}, paging.Options{})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return ctrl, src
}

func TestStartPoller_RefreshesRequestedPages(t *testing.T) {
	ctrl, src := newPollerController(t)
	require.NoError(t, ctrl.FetchPage(context.Background(), 3))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartPoller(ctx, ctrl, 5*time.Millisecond, zerolog.Nop())

	require.Eventually(t, func() bool {
		return len(src.PageRequests()) >= 3
	}, time.Second, 5*time.Millisecond)
	cancel()

	for _, page := range src.PageRequests() {
		assert.Equal(t, 3, page)
	}
}

func TestStartPoller_StopsBeforeReturningDone(t *testing.T) {
	ctrl, src := newPollerController(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartPoller(ctx, ctrl, 2*time.Millisecond, zerolog.Nop())
	require.Eventually(t, func() bool {
		return len(src.PageRequests()) >= 2
	}, time.Second, 2*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	stopped := len(src.PageRequests())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, src.PageRequests(), stopped)
}

func TestStartPoller_DisabledInterval(t *testing.T) {
	ctrl, src := newPollerController(t)

	done := StartPoller(context.Background(), ctrl, 0, zerolog.Nop())
	_, ok := <-done
	assert.False(t, ok, "done should already be closed")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, src.PageRequests())
	assert.Empty(t, ctrl.QueriedPages())
}
