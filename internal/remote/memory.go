package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/five82/channelsync/internal/state"
)

// Call records one request served by a MemorySource.
type Call struct {
	Op       string // "page", "one" or "reorder"
	Identity state.Identity
	Page     int
	ItemID   string
	Reorder  state.Reorder
}

// MemorySource serves collections from memory. It backs the demo mode and
// the tests of the paging package. Items are stored in default display
// order (newest position first); an ASC direction reverses it.
type MemorySource struct {
	mu          sync.Mutex
	collections map[string][]state.Item
	err         error
	calls       []Call

	// BeforeFetch, when set, runs before a page is served. Tests use it to
	// hold a response while the caller changes state.
	BeforeFetch func(id state.Identity, page int)
}

// NewMemorySource returns an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{collections: make(map[string][]state.Item)}
}

// Put appends items to a collection, creating it when needed.
func (m *MemorySource) Put(collectionID string, items ...state.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collectionID] = append(m.collections[collectionID], items...)
}

// Prepend inserts items at the head of a collection, as a newly added
// entry would appear.
func (m *MemorySource) Prepend(collectionID string, items ...state.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collectionID] = append(slices.Clone(items), m.collections[collectionID]...)
}

// Delete removes an item from a collection, as another client would.
func (m *MemorySource) Delete(collectionID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collectionID] = slices.DeleteFunc(m.collections[collectionID], func(it state.Item) bool {
		return it.ID == itemID
	})
}

// Replace swaps the stored content of every copy of item.ID.
func (m *MemorySource) Replace(item state.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, items := range m.collections {
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
			}
		}
	}
}

// Contents returns the stored order of a collection.
func (m *MemorySource) Contents(collectionID string) []state.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.collections[collectionID])
}

// FailWith makes every subsequent call return err. A nil err clears it.
func (m *MemorySource) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the requests served so far.
func (m *MemorySource) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// PageRequests returns the page numbers requested so far, in order.
func (m *MemorySource) PageRequests() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pages []int
	for _, c := range m.calls {
		if c.Op == "page" {
			pages = append(pages, c.Page)
		}
	}
	return pages
}

// Reorders returns the reorder requests received so far.
func (m *MemorySource) Reorders() []state.Reorder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []state.Reorder
	for _, c := range m.calls {
		if c.Op == "reorder" {
			out = append(out, c.Reorder)
		}
	}
	return out
}

// FetchPage serves one page of the view addressed by id.
func (m *MemorySource) FetchPage(ctx context.Context, id state.Identity, page int) (state.Page, error) {
	if hook := m.BeforeFetch; hook != nil {
		hook(id, page)
	}
	if err := ctx.Err(); err != nil {
		return state.Page{}, err
	}
	if err := id.Validate(); err != nil {
		return state.Page{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "page", Identity: id, Page: page})
	if m.err != nil {
		return state.Page{}, m.err
	}

	view := m.view(id)
	start := (page - 1) * id.PageSize
	if page < 1 || start >= len(view) {
		return state.Page{Items: []state.Item{}, Count: len(view)}, nil
	}
	end := min(start+id.PageSize, len(view))
	return state.Page{Items: slices.Clone(view[start:end]), Count: len(view)}, nil
}

// FetchOne returns the stored content of an item.
func (m *MemorySource) FetchOne(ctx context.Context, id, kind string) (*state.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "one", ItemID: id})
	if m.err != nil {
		return nil, m.err
	}
	for _, items := range m.collections {
		for _, it := range items {
			if it.ID == id && state.ConnectableKind(it.Type) == kind {
				found := it
				return &found, nil
			}
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

// Reorder moves an item so that it ends up at req.Position counted from
// the end of the collection.
func (m *MemorySource) Reorder(ctx context.Context, req state.Reorder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "reorder", Reorder: req})
	if m.err != nil {
		return m.err
	}

	items := m.collections[req.CollectionID]
	from := slices.IndexFunc(items, func(it state.Item) bool {
		return it.ID == req.ItemID && state.ConnectableKind(it.Type) == req.Kind
	})
	if from < 0 {
		return fmt.Errorf("item %s: %w", req.ItemID, ErrNotFound)
	}
	moved := items[from]
	items = slices.Delete(items, from, from+1)
	to := len(items) + 1 - req.Position
	to = max(0, min(to, len(items)))
	m.collections[req.CollectionID] = slices.Insert(items, to, moved)
	return nil
}

func (m *MemorySource) view(id state.Identity) []state.Item {
	items := m.collections[id.CollectionID]
	view := make([]state.Item, 0, len(items))
	for _, it := range items {
		if id.TypeFilter != "" && it.Type != id.TypeFilter {
			continue
		}
		view = append(view, it)
	}
	if id.Direction == state.DirectionAsc {
		slices.Reverse(view)
	}
	return view
}

// NewItem builds an item with a JSON payload carrying id, type and title.
func NewItem(id, typ, title string) state.Item {
	payload, _ := json.Marshal(map[string]string{"id": id, "type": typ, "title": title})
	return state.Item{ID: id, Type: typ, Payload: payload}
}

// DemoSource returns a source holding one collection of n generated items.
func DemoSource(collectionID string, n int) *MemorySource {
	types := []string{"Text", "Image", "Link", "Attachment", "Channel"}
	src := NewMemorySource()
	for i := range n {
		typ := types[i%len(types)]
		id := fmt.Sprintf("%d", n-i)
		src.Put(collectionID, NewItem(id, typ, fmt.Sprintf("%s %s", typ, id)))
	}
	return src
}
