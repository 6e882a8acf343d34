// Package state holds the locally materialized view of remote collections.
//
// # Overview
//
// A collection is fetched page by page from the remote API. The Store keeps,
// per query Identity, an ordered sequence of item references plus the best
// known total count. The sequence is sparse: a nil slot is an index that is
// reserved but not yet resolved, and the sequence may be shorter than Count
// when the tail has not been fetched.
//
// PageSet records which pages were requested for the current identity. It
// is tracked separately from the sequence because "what have I asked for"
// and "what do I currently hold" diverge after local mutations.
//
// # Update Semantics
//
// Store.Update is the single point of mutation. The updater runs exactly
// once, under the store lock, with a private copy of the current snapshot:
//
//	store.Update(id, func(prev state.Snapshot) *state.Change {
//		if len(prev.Items) == 0 {
//			return nil // no write
//		}
//		count := prev.Count - 1
//		return &state.Change{Items: prev.Items[1:], Count: &count}
//	})
//
// Fields left nil in the Change keep their previous value. Items and Count
// are committed together, so readers never observe one without the other.
// Updaters must not call back into the Store.
//
// # Lifecycle
//
// A snapshot is created lazily by the first write for an identity. Views
// call Acquire when they start showing an identity and Release when they
// stop; the snapshot is discarded once no view references it.
//
// # Concurrency Model
//
//   - Update(): write lock held across read, compute and write
//   - Read(): read lock, returns a copy of the slot slice
//
// Items are shared between snapshots by pointer and are never modified in
// place; replacing an item swaps the pointer in its slot.
package state
