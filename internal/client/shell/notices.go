package shell

import (
	"fmt"
	"sync"

	"github.com/atinyakov/taskdock/internal/client/cache"
)

// Notices collects background refresh events and prints them before the
// next prompt.
type Notices struct {
	mu      sync.Mutex
	pending []string
	failing map[string]bool
}

// NewNotices creates an empty notice feed.
func NewNotices() *Notices {
	return &Notices{failing: make(map[string]bool)}
}

// Watch returns a callback for cache.WithOnChange. It records the first
// failed refresh of name and the fetch that recovers from it.
func (n *Notices) Watch(name string) func(cache.State) {
	return func(s cache.State) {
		n.mu.Lock()
		defer n.mu.Unlock()
		switch {
		case s == cache.Stale && !n.failing[name]:
			n.failing[name] = true
			n.pending = append(n.pending, fmt.Sprintf("Could not refresh %s; showing cached data", name))
		case s == cache.Fresh && n.failing[name]:
			delete(n.failing, name)
			n.pending = append(n.pending, fmt.Sprintf("%s are up to date again", name))
		}
	}
}

func (n *Notices) drain() []string {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
