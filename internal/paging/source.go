package paging

import (
	"context"

	"github.com/five82/channelsync/internal/state"
)

// Source is the remote side of the cache. Implemented by *remote.Client
// and *remote.MemorySource.
type Source interface {
	// FetchPage returns the items of one page plus the authoritative total.
	FetchPage(ctx context.Context, id state.Identity, page int) (state.Page, error)
	// FetchOne returns the current content of one item, bypassing caches.
	FetchOne(ctx context.Context, id, kind string) (*state.Item, error)
	// Reorder moves an item inside its collection.
	Reorder(ctx context.Context, req state.Reorder) error
}

// PageFromIndex maps a 0-based item index to its 1-based page number.
func PageFromIndex(index, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if index < 0 {
		index = 0
	}
	return index/pageSize + 1
}
