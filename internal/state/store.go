package state

import (
	"sync"
	"time"
)

// Snapshot is the cached state of one paginated view.
type Snapshot struct {
	// Items holds the known slots in order. A nil entry is a placeholder.
	Items []*Item
	// Count is the total size reported by the remote source, adjusted by
	// local mutations.
	Count int
	// Version increases with every committed write.
	Version             uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the remote source failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Resolved returns the number of non-placeholder slots.
func (s Snapshot) Resolved() int {
	n := 0
	for _, item := range s.Items {
		if item != nil {
			n++
		}
	}
	return n
}

// Change describes a write produced by an updater. A nil field keeps the
// previous value.
type Change struct {
	Items []*Item
	Count *int
}

// Updater computes the next state from the previous one. Returning nil
// skips the write.
type Updater func(prev Snapshot) *Change

type entry struct {
	snapshot Snapshot
	refs     int
}

// Store coordinates concurrent access to the cached snapshots, keyed by
// query identity.
type Store struct {
	mu      sync.RWMutex
	entries map[Identity]*entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Identity]*entry)}
}

// Read returns a copy of the snapshot for id. The boolean is false when
// nothing has been written for id yet.
func (s *Store) Read(id Identity) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Snapshot{}, false
	}
	return cloneSnapshot(e.snapshot), true
}

// Update atomically applies fn to the snapshot for id. fn runs exactly once
// with a private copy of the current state and must not call back into the
// Store. Update reports whether a write was committed.
func (s *Store) Update(id Identity, fn Updater) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[id]
	var prev Snapshot
	if e != nil {
		prev = cloneSnapshot(e.snapshot)
	}

	change := fn(prev)
	if change == nil {
		return false
	}

	if e == nil {
		e = s.lazyEntry(id)
	}
	if change.Items != nil {
		e.snapshot.Items = change.Items
	}
	if change.Count != nil {
		count := *change.Count
		if count < 0 {
			count = 0
		}
		e.snapshot.Count = count
	}
	e.snapshot.Version++
	e.snapshot.LastError = nil
	e.snapshot.LastUpdated = time.Now()
	e.snapshot.ConsecutiveFailures = 0
	return true
}

// RecordFailure keeps the cached data for id but records err for visibility.
func (s *Store) RecordFailure(id Identity, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[id]
	if e == nil {
		e = s.lazyEntry(id)
	}
	e.snapshot.LastError = err
	e.snapshot.LastUpdated = time.Now()
	e.snapshot.ConsecutiveFailures++
}

// Acquire registers a view of id.
func (s *Store) Acquire(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[id]
	if e == nil {
		e = s.lazyEntry(id)
	}
	e.refs++
}

// Release drops a view of id. The snapshot is discarded when the last view
// is released.
func (s *Store) Release(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.entries, id)
	}
}

func (s *Store) lazyEntry(id Identity) *entry {
	if s.entries == nil {
		s.entries = make(map[Identity]*entry)
	}
	e := &entry{}
	s.entries[id] = e
	return e
}

func cloneSnapshot(src Snapshot) Snapshot {
	snap := src
	snap.Items = cloneItems(src.Items)
	return snap
}

func cloneItems(items []*Item) []*Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]*Item, len(items))
	copy(dup, items)
	return dup
}
