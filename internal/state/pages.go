package state

import (
	"sort"
	"sync"
)

// PageSet tracks which page numbers were requested for one identity.
// The zero value is ready to use.
type PageSet struct {
	mu    sync.Mutex
	pages map[int]struct{}
}

// MarkFetched records page. Repeated calls are harmless.
func (p *PageSet) MarkFetched(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pages == nil {
		p.pages = make(map[int]struct{})
	}
	p.pages[page] = struct{}{}
}

// IsFetched reports whether page was recorded since the last Reset.
func (p *PageSet) IsFetched(page int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pages[page]
	return ok
}

// Unmark forgets a single page so that it can be requested again.
func (p *PageSet) Unmark(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pages, page)
}

// Reset empties the set.
func (p *PageSet) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = nil
}

// Pages returns the recorded pages in ascending order.
func (p *PageSet) Pages() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, 0, len(p.pages))
	for page := range p.pages {
		out = append(out, page)
	}
	sort.Ints(out)
	return out
}
