package paging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/channelsync/internal/metrics"
	"github.com/five82/channelsync/internal/state"
)

// Options configures a Controller.
type Options struct {
	// MaxInFlight bounds concurrent remote calls. Defaults to 4.
	MaxInFlight int
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// Controller decides which pages to fetch for the current identity and
// merges their results into the shared store.
type Controller struct {
	src     Source
	store   *state.Store
	tasks   *dispatcher
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu    sync.Mutex
	id    state.Identity
	epoch uint64
	pages state.PageSet

	loading atomic.Int64
}

// NewController starts a view of id backed by store.
func NewController(src Source, store *state.Store, id state.Identity, opts Options) (*Controller, error) {
	if src == nil || store == nil {
		return nil, fmt.Errorf("source and store required")
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	store.Acquire(id)
	return &Controller{
		src:     src,
		store:   store,
		tasks:   newDispatcher(opts.MaxInFlight, opts.Metrics),
		metrics: opts.Metrics,
		log:     opts.Logger.With().Str("component", "paging").Logger(),
		id:      id,
	}, nil
}

// Identity returns the identity currently viewed.
func (c *Controller) Identity() state.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// SetIdentity switches the view. Page tracking restarts and results still
// in flight for the previous identity are discarded on arrival.
func (c *Controller) SetIdentity(id state.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.id {
		return nil
	}
	c.store.Acquire(id)
	c.store.Release(c.id)
	c.log.Debug().Str("from", c.id.String()).Str("to", id.String()).Msg("identity changed")
	c.id = id
	c.epoch++
	c.pages.Reset()
	return nil
}

// HasQueriedPage reports whether page was requested for the current identity.
func (c *Controller) HasQueriedPage(page int) bool {
	return c.pages.IsFetched(page)
}

// QueriedPages lists the pages requested for the current identity.
func (c *Controller) QueriedPages() []int {
	return c.pages.Pages()
}

// PageFromIndex maps an item index of the current view to its page.
func (c *Controller) PageFromIndex(index int) int {
	return PageFromIndex(index, c.Identity().PageSize)
}

// GetPage marks page as requested and fetches it in the background.
func (c *Controller) GetPage(ctx context.Context, page int) {
	if page < 1 {
		return
	}
	id, epoch := c.mark(page)
	c.tasks.Go(ctx, func(ctx context.Context) {
		_ = c.fetch(ctx, id, epoch, page)
	})
}

// FetchPage marks page as requested and fetches it before returning.
func (c *Controller) FetchPage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("page %d out of range", page)
	}
	id, epoch := c.mark(page)
	return c.fetch(ctx, id, epoch, page)
}

// RefetchAll forgets every tracked page and requests the first page again.
func (c *Controller) RefetchAll(ctx context.Context) {
	c.mu.Lock()
	c.pages.Reset()
	c.mu.Unlock()
	c.GetPage(ctx, 1)
}

// RevalidatePages re-requests the already requested pages between from and
// to inclusive, walking from from toward to. It returns the pages scheduled.
func (c *Controller) RevalidatePages(ctx context.Context, from, to int) []int {
	ctx, batch := withBatch(ctx)
	from, to = max(from, 1), max(to, 1)
	step := 1
	if to < from {
		step = -1
	}
	var scheduled []int
	for page := from; ; page += step {
		if c.HasQueriedPage(page) {
			c.GetPage(ctx, page)
			scheduled = append(scheduled, page)
		}
		if page == to {
			break
		}
	}
	c.metrics.Revalidated(len(scheduled))
	c.log.Debug().Str("batch", batch).Int("from", from).Int("to", to).Ints("pages", scheduled).Msg("revalidating pages")
	return scheduled
}

// RevalidateAll re-requests every page requested so far.
func (c *Controller) RevalidateAll(ctx context.Context) []int {
	ctx, batch := withBatch(ctx)
	pages := c.QueriedPages()
	for _, page := range pages {
		c.GetPage(ctx, page)
	}
	c.metrics.Revalidated(len(pages))
	c.log.Debug().Str("batch", batch).Ints("pages", pages).Msg("revalidating all pages")
	return pages
}

// Snapshot returns the cached state of the current identity.
func (c *Controller) Snapshot() state.Snapshot {
	snap, _ := c.store.Read(c.Identity())
	return snap
}

// Items returns the cached slots of the current identity.
func (c *Controller) Items() []*state.Item {
	return c.Snapshot().Items
}

// Count returns the best known total of the current identity.
func (c *Controller) Count() int {
	return c.Snapshot().Count
}

// Loading reports whether a page fetch is in flight.
func (c *Controller) Loading() bool {
	return c.loading.Load() > 0
}

// Pending reports background fetches and reorders that have not finished.
func (c *Controller) Pending() int {
	return c.tasks.Pending()
}

// Wait blocks until all background work has finished.
func (c *Controller) Wait() {
	c.tasks.Wait()
}

// Close waits for background work and releases the current identity.
func (c *Controller) Close() {
	c.tasks.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Release(c.id)
}

func (c *Controller) mark(page int) (state.Identity, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages.MarkFetched(page)
	return c.id, c.epoch
}

func (c *Controller) fetch(ctx context.Context, id state.Identity, epoch uint64, page int) error {
	c.loading.Add(1)
	defer c.loading.Add(-1)

	log := c.logger(ctx)
	start := time.Now()
	result, err := c.src.FetchPage(ctx, id, page)
	if err != nil {
		c.metrics.PageFailed()
		c.mu.Lock()
		if c.epoch == epoch {
			c.pages.Unmark(page)
			c.store.RecordFailure(id, err)
		}
		c.mu.Unlock()
		log.Warn().Err(err).Str("identity", id.String()).Int("page", page).Msg("page fetch failed")
		return fmt.Errorf("fetch page %d: %w", page, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.metrics.Discarded()
		log.Debug().Str("identity", id.String()).Int("page", page).Msg("discarding page for superseded identity")
		return nil
	}
	offset := (page - 1) * id.PageSize
	c.store.Update(id, func(prev state.Snapshot) *state.Change {
		return mergePage(prev, offset, result)
	})
	c.metrics.PageFetched(time.Since(start))
	log.Debug().Str("identity", id.String()).Int("page", page).Int("items", len(result.Items)).Int("count", result.Count).Msg("page merged")
	return nil
}

type batchKey struct{}

// withBatch tags ctx with a revalidation batch id, reusing one already
// present, so every fetch scheduled under it logs the same batch.
func withBatch(ctx context.Context) (context.Context, string) {
	if batch, ok := ctx.Value(batchKey{}).(string); ok {
		return ctx, batch
	}
	batch := uuid.NewString()
	return context.WithValue(ctx, batchKey{}, batch), batch
}

func (c *Controller) logger(ctx context.Context) zerolog.Logger {
	if batch, ok := ctx.Value(batchKey{}).(string); ok {
		return c.log.With().Str("batch", batch).Logger()
	}
	return c.log
}

// mergePage writes page at offset. Slots past the page are padded with nil,
// the count comes from the server, slots beyond it are dropped, and any
// other slot holding an item of the page is cleared.
func mergePage(prev state.Snapshot, offset int, page state.Page) *state.Change {
	items := prev.Items
	end := offset + len(page.Items)

	incoming := make(map[state.ItemKey]struct{}, len(page.Items))
	for i := range page.Items {
		if page.Items[i].ID != "" {
			incoming[page.Items[i].Key()] = struct{}{}
		}
	}
	for i, it := range items {
		if it == nil || (i >= offset && i < end) {
			continue
		}
		if _, dup := incoming[it.Key()]; dup {
			items[i] = nil
		}
	}

	if len(items) < end {
		items = append(items, make([]*state.Item, end-len(items))...)
	}
	for i := range page.Items {
		item := page.Items[i]
		items[offset+i] = &item
	}

	count := max(page.Count, 0)
	if len(items) > count {
		items = items[:count]
	}
	if items == nil {
		items = []*state.Item{}
	}
	return &state.Change{Items: items, Count: &count}
}
