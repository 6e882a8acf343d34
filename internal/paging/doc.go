// Package paging keeps a page-fetched view of a remote collection in sync
// with local edits.
//
// # Overview
//
// A Controller owns the current state.Identity and the set of pages already
// requested for it. GetPage marks a page and fetches it on a bounded
// background dispatcher; results are merged into the shared state.Store at
// offset (page-1)*pageSize. Changing the identity bumps an epoch, so results
// still in flight for the old identity are dropped when they arrive.
//
// A Mutator layers the local edits on top:
//
//   - RemoveLocal: splice out, decrement count, revalidate later pages
//   - MoveLocal: splice, then send a reorder request in the background
//   - ReplaceInPlace: fetch one item fresh and swap its slot
//   - AppendStructuralReset: forget all pages and refetch page 1
//
// # Revalidation
//
// A removal shifts every later item one slot toward the head, so the cached
// tail is stale. Only pages that were already requested are re-requested,
// walking from the page of the removed index toward the last page:
//
//	page size 10, count 25, pages {1,2}
//	remove index 3  -> count 24, pages 1..3 considered, 1 and 2 re-requested
//
// # Failure Handling
//
// A failed page fetch unmarks the page so the next GetPage retries it. A
// failed item refresh keeps the cached value. A failed reorder keeps the
// local splice unless MutatorOptions.RevalidateOnMoveFailure is set.
package paging
