package drop

import (
	"sync"

	"github.com/teranos/crossview/anchor"
)

// Event is a drop waiting for its destination to process it
type Event struct {
	Payload Payload
	Zone    anchor.Zone
	Bounds  anchor.Rect
}

// Inbox holds at most one pending drop. Take hands it out exactly once, so
// a recomputation triggered by anything else never sees it again.
type Inbox struct {
	mu      sync.Mutex
	pending *Event
}

// Post stores ev, replacing an unconsumed one. It reports whether a
// pending drop was replaced.
func (b *Inbox) Post(ev Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	replaced := b.pending != nil
	b.pending = &ev
	return replaced
}

// Take consumes the pending drop
func (b *Inbox) Take() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Event{}, false
	}
	ev := *b.pending
	b.pending = nil
	return ev, true
}

// Pending reports whether a drop is waiting
func (b *Inbox) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}
