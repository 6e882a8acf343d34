package paging

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/five82/channelsync/internal/metrics"
	"github.com/five82/channelsync/internal/state"
)

// MutatorOptions configures a Mutator.
type MutatorOptions struct {
	// RevalidateOnMoveFailure re-requests the pages spanned by a move whose
	// reorder request failed. Off by default: the local splice is kept.
	RevalidateOnMoveFailure bool
	Metrics                 *metrics.Metrics
	Logger                  zerolog.Logger
}

// Mutator applies local edits to the cached view of a Controller and
// schedules the follow-up remote work. Every edit goes through
// state.Store.Update; network calls start only after the write commits.
type Mutator struct {
	ctrl    *Controller
	src     Source
	store   *state.Store
	metrics *metrics.Metrics
	log     zerolog.Logger

	revalidateOnMoveFailure bool
}

// NewMutator wraps ctrl.
func NewMutator(ctrl *Controller, opts MutatorOptions) *Mutator {
	return &Mutator{
		ctrl:                    ctrl,
		src:                     ctrl.src,
		store:                   ctrl.store,
		metrics:                 opts.Metrics,
		log:                     opts.Logger.With().Str("component", "mutator").Logger(),
		revalidateOnMoveFailure: opts.RevalidateOnMoveFailure,
	}
}

// Controller returns the wrapped controller.
func (m *Mutator) Controller() *Controller {
	return m.ctrl
}

// RemoveLocal splices the first item matching key out of the cache and
// revalidates the requested pages from the removal point to the end. The
// remote collection is not touched. It reports whether an item was removed.
func (m *Mutator) RemoveLocal(ctx context.Context, key state.ItemKey) bool {
	id := m.ctrl.Identity()
	removed, newCount := -1, 0
	m.store.Update(id, func(prev state.Snapshot) *state.Change {
		idx := slices.IndexFunc(prev.Items, func(it *state.Item) bool {
			return it != nil && it.Key() == key
		})
		if idx < 0 {
			return nil
		}
		items := slices.Delete(prev.Items, idx, idx+1)
		count := max(prev.Count-1, 0)
		removed, newCount = idx, count
		return &state.Change{Items: items, Count: &count}
	})
	if removed < 0 {
		m.log.Debug().Str("id", key.ID).Str("type", key.Type).Msg("remove: item not cached")
		return false
	}
	m.metrics.Removed()

	ctx, batch := withBatch(ctx)
	from := PageFromIndex(removed, id.PageSize)
	to := PageFromIndex(max(newCount-1, 0), id.PageSize)
	pages := m.ctrl.RevalidatePages(ctx, from, to)
	m.log.Debug().
		Str("batch", batch).
		Str("id", key.ID).
		Int("index", removed).
		Int("count", newCount).
		Ints("pages", pages).
		Msg("removed locally, revalidating")
	return true
}

// MoveLocal moves the item at oldIndex to newIndex (-1 means the last
// position) and asks the remote to do the same. It reports whether the
// move was applied.
func (m *Mutator) MoveLocal(ctx context.Context, oldIndex, newIndex int) bool {
	id := m.ctrl.Identity()
	var req state.Reorder
	target := newIndex
	applied := m.store.Update(id, func(prev state.Snapshot) *state.Change {
		if target == -1 {
			target = prev.Count - 1
		}
		// A target at or past Count would send insert_at <= 0 and leave a
		// slot beyond the count.
		if oldIndex < 0 || oldIndex >= len(prev.Items) || target < 0 || target >= prev.Count {
			return nil
		}
		item := prev.Items[oldIndex]
		if !item.Resolved() {
			return nil
		}

		items := prev.Items
		if need := target + 1; len(items) < need {
			items = append(items, make([]*state.Item, need-len(items))...)
		}
		items = slices.Delete(items, oldIndex, oldIndex+1)
		items = slices.Insert(items, target, item)

		req = state.Reorder{
			CollectionID: id.CollectionID,
			ItemID:       item.ID,
			Kind:         state.ConnectableKind(item.Type),
			Position:     prev.Count - target,
		}
		return &state.Change{Items: items}
	})
	if !applied {
		m.log.Debug().Int("from", oldIndex).Int("to", newIndex).Msg("move: nothing to move")
		return false
	}

	m.ctrl.tasks.Go(ctx, func(ctx context.Context) {
		err := m.src.Reorder(ctx, req)
		m.metrics.Reordered(err)
		if err == nil {
			m.log.Debug().Str("id", req.ItemID).Int("insert_at", req.Position).Msg("reorder confirmed")
			return
		}
		m.log.Warn().Err(err).Str("id", req.ItemID).Int("insert_at", req.Position).Msg("reorder failed")
		if m.revalidateOnMoveFailure && m.ctrl.Identity() == id {
			lo, hi := min(oldIndex, target), max(oldIndex, target)
			m.ctrl.RevalidatePages(ctx, PageFromIndex(lo, id.PageSize), PageFromIndex(hi, id.PageSize))
		}
	})
	return true
}

// ReplaceInPlace fetches the current content of one item and swaps it into
// the first slot holding the same id. Collections are skipped. Failures
// keep the cached value. It reports whether a slot was replaced.
func (m *Mutator) ReplaceInPlace(ctx context.Context, itemID, kind string) bool {
	if kind == state.KindChannel {
		return false
	}
	item, err := m.src.FetchOne(ctx, itemID, kind)
	m.metrics.Refreshed(err)
	if err != nil {
		m.log.Warn().Err(err).Str("id", itemID).Str("kind", kind).Msg("item refresh failed")
		return false
	}
	if item == nil {
		m.log.Debug().Str("id", itemID).Msg("item refresh returned nothing")
		return false
	}

	return m.store.Update(m.ctrl.Identity(), func(prev state.Snapshot) *state.Change {
		idx := slices.IndexFunc(prev.Items, func(it *state.Item) bool {
			return it != nil && it.ID == itemID
		})
		if idx < 0 {
			return nil
		}
		items := prev.Items
		items[idx] = item
		return &state.Change{Items: items}
	})
}

// AppendStructuralReset handles an insertion at an unknown position by
// dropping page tracking and refetching from the first page.
func (m *Mutator) AppendStructuralReset(ctx context.Context) {
	m.metrics.Reset()
	m.log.Debug().Str("identity", m.ctrl.Identity().String()).Msg("structural reset")
	m.ctrl.RefetchAll(ctx)
}

// Wait blocks until all background work has finished.
func (m *Mutator) Wait() {
	m.ctrl.Wait()
}
