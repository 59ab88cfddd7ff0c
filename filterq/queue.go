package filterq

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/logger"
)

func log() *zap.SugaredLogger {
	return logger.Logger.Named("filterq")
}

// Mode is the binary layout switch of the consuming panel
type Mode int

const (
	// ModeAll lays out the full, unfiltered dataset
	ModeAll Mode = iota
	// ModeFiltered lays out only the queue's matches
	ModeFiltered
)

func (m Mode) String() string {
	if m == ModeFiltered {
		return "filtered"
	}
	return "all"
}

// Queue is an ordered set of descriptors. It is safe for concurrent use;
// callbacks run after the lock is released.
type Queue struct {
	mu       sync.Mutex
	items    []Descriptor
	now      func() time.Time
	onMode   []func(Mode)
	onChange []func([]Descriptor)
}

// New creates an empty queue
func New() *Queue {
	return &Queue{now: time.Now}
}

// OnModeChange registers fn for empty/non-empty transitions only
func (q *Queue) OnModeChange(fn func(Mode)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onMode = append(q.onMode, fn)
}

// OnChange registers fn for every change of the queue's contents
func (q *Queue) OnChange(fn func([]Descriptor)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = append(q.onChange, fn)
}

// Upsert appends d unless an entry with the same type and value exists.
// It reports whether d was inserted.
func (q *Queue) Upsert(d Descriptor) bool {
	q.mu.Lock()
	id := d.identity()
	for _, it := range q.items {
		if it.identity() == id {
			q.mu.Unlock()
			return false
		}
	}
	if d.Label == "" {
		d.Label = defaultLabel(d.Type, d.Value)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = q.now()
	}
	before := len(q.items)
	q.items = append(q.items, d)
	q.commit(before)
	return true
}

// RemoveAt removes the entry at i. Out of range indices are ignored.
func (q *Queue) RemoveAt(i int) bool {
	q.mu.Lock()
	if i < 0 || i >= len(q.items) {
		q.mu.Unlock()
		return false
	}
	before := len(q.items)
	q.items = append(q.items[:i:i], q.items[i+1:]...)
	q.commit(before)
	return true
}

// Clear empties the queue
func (q *Queue) Clear() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	before := len(q.items)
	q.items = nil
	q.commit(before)
}

// commit releases the lock held by the caller and fires callbacks
func (q *Queue) commit(before int) {
	items := q.snapshotLocked()
	after := len(items)
	onChange := make([]func([]Descriptor), len(q.onChange))
	copy(onChange, q.onChange)
	var onMode []func(Mode)
	if (before == 0) != (after == 0) {
		onMode = append(onMode, q.onMode...)
	}
	q.mu.Unlock()

	if len(onMode) > 0 {
		mode := modeOf(after)
		log().Debugw("Filter mode changed", "mode", mode.String(), logger.FieldCount, after)
		for _, fn := range onMode {
			fn(mode)
		}
	}
	for _, fn := range onChange {
		fn(items)
	}
}

func (q *Queue) snapshotLocked() []Descriptor {
	out := make([]Descriptor, len(q.items))
	copy(out, q.items)
	return out
}

func modeOf(n int) Mode {
	if n == 0 {
		return ModeAll
	}
	return ModeFiltered
}

// Items returns a copy of the entries in insertion order
func (q *Queue) Items() []Descriptor {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Len returns the number of entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Mode reports whether the consuming panel shows all data or the matches
func (q *Queue) Mode() Mode {
	return modeOf(q.Len())
}

// Compose returns the OR of every entry using exact matching. An empty
// queue composes to MatchAll.
func (q *Queue) Compose() Predicate {
	return q.ComposeFor(nil)
}

// ComposeFor is Compose with the city fallback resolved against records:
// a city entry that matches none of them exactly matches case-insensitively
// after trimming whitespace.
func (q *Queue) ComposeFor(records []dataset.Record) Predicate {
	items := q.Items()
	if len(items) == 0 {
		return MatchAll
	}
	preds := make([]Predicate, 0, len(items))
	for _, d := range items {
		preds = append(preds, d.resolve(records))
	}
	return or(preds)
}

// Apply filters records through ComposeFor(records) and removes structural
// duplicates
func (q *Queue) Apply(records []dataset.Record) []dataset.Record {
	return Filter(records, q.ComposeFor(records))
}
