// Package selection is the shared interaction state of the dashboard:
// hover targets, accumulating selections, per-panel drop highlights, the
// data index and the link display mode.
//
// Panels never talk to each other. They mutate a Store and subscribe to
// the slices of state they render from.
package selection

import (
	"sync"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/logger"
)

// Listener receives a snapshot taken right after a mutation and the set of
// slices that mutation changed
type Listener func(snap State, changed Slice)

type subscription struct {
	id     int
	name   string
	slices Slice
	fn     Listener
}

type notification struct {
	snap    State
	changed Slice
}

// Store holds State and notifies subscribers whose declared slices a
// mutation touched. Every mutator is a no-op, and notifies nobody, when the
// value is unchanged.
//
// Notifications are delivered outside the lock, one mutation at a time, in
// mutation order. A listener may mutate the store; that mutation is queued
// and delivered after the current one finishes.
type Store struct {
	mu       sync.Mutex
	state    State
	version  uint64
	subs     []subscription
	nextID   int
	queue    []notification
	draining bool
}

// NewStore creates a store with empty hover and selection state
func NewStore(mode LinkDisplayMode) *Store {
	if mode == "" {
		mode = DirectLinks
	}
	return &Store{state: initialState(mode)}
}

// Subscribe registers fn for changes to any of slices (SliceAll when none
// are given). The returned func removes the subscription.
func (s *Store) Subscribe(name string, fn Listener, slices ...Slice) func() {
	var want Slice
	for _, sl := range slices {
		want |= sl
	}
	if want == 0 {
		want = SliceAll
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, name: name, slices: want, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update runs mutate under the lock and then drains pending notifications
func (s *Store) update(mutate func(st *State) Slice) {
	s.mu.Lock()
	changed := mutate(&s.state)
	if changed != 0 {
		s.version++
		s.queue = append(s.queue, notification{snap: s.state.clone(), changed: changed})
	}
	if s.draining || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	s.draining = true
	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue = s.queue[1:]

		var targets []subscription
		for _, sub := range s.subs {
			if sub.slices.Intersects(n.changed) {
				targets = append(targets, sub)
			}
		}

		s.mu.Unlock()
		for _, sub := range targets {
			deliver(sub, n)
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func deliver(sub subscription, n notification) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Named("selection").Errorw("Subscriber panicked",
				"subscriber", sub.name,
				"changed", n.changed.String(),
				"panic", r)
		}
	}()
	sub.fn(n.snap, n.changed)
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Version counts state-changing mutations
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Hover

// HoveredDay returns the hovered day, if any
func (s *Store) HoveredDay() (dataset.DayKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.HoveredDay == nil {
		return 0, false
	}
	return *s.state.HoveredDay, true
}

// SetHoveredDay sets the hovered day
func (s *Store) SetHoveredDay(day dataset.DayKey) {
	s.update(func(st *State) Slice {
		if st.HoveredDay != nil && *st.HoveredDay == day {
			return 0
		}
		st.HoveredDay = &day
		return SliceHoveredDay
	})
}

// ClearHoveredDay unsets the hovered day
func (s *Store) ClearHoveredDay() {
	s.update(func(st *State) Slice {
		if st.HoveredDay == nil {
			return 0
		}
		st.HoveredDay = nil
		return SliceHoveredDay
	})
}

// HoveredCity returns the hovered city, if any
func (s *Store) HoveredCity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.HoveredCity == nil {
		return "", false
	}
	return *s.state.HoveredCity, true
}

// SetHoveredCity sets the hovered city
func (s *Store) SetHoveredCity(city string) {
	s.update(func(st *State) Slice {
		if st.HoveredCity != nil && *st.HoveredCity == city {
			return 0
		}
		st.HoveredCity = &city
		return SliceHoveredCity
	})
}

// ClearHoveredCity unsets the hovered city
func (s *Store) ClearHoveredCity() {
	s.update(func(st *State) Slice {
		if st.HoveredCity == nil {
			return 0
		}
		st.HoveredCity = nil
		return SliceHoveredCity
	})
}

// HoveredFlowNode returns the hovered flow node, if any
func (s *Store) HoveredFlowNode() (FlowNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.HoveredFlowNode == nil {
		return FlowNode{}, false
	}
	return *s.state.HoveredFlowNode, true
}

// SetHoveredFlowNode sets the hovered flow node
func (s *Store) SetHoveredFlowNode(node FlowNode) {
	s.update(func(st *State) Slice {
		if st.HoveredFlowNode != nil && *st.HoveredFlowNode == node {
			return 0
		}
		st.HoveredFlowNode = &node
		return SliceHoveredFlowNode
	})
}

// ClearHoveredFlowNode unsets the hovered flow node
func (s *Store) ClearHoveredFlowNode() {
	s.update(func(st *State) Slice {
		if st.HoveredFlowNode == nil {
			return 0
		}
		st.HoveredFlowNode = nil
		return SliceHoveredFlowNode
	})
}

// HoveredFlowLink returns the hovered flow link, if any
func (s *Store) HoveredFlowLink() (FlowLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.HoveredFlowLink == nil {
		return FlowLink{}, false
	}
	return *s.state.HoveredFlowLink, true
}

// SetHoveredFlowLink sets the hovered flow link
func (s *Store) SetHoveredFlowLink(link FlowLink) {
	s.update(func(st *State) Slice {
		if st.HoveredFlowLink != nil && *st.HoveredFlowLink == link {
			return 0
		}
		st.HoveredFlowLink = &link
		return SliceHoveredFlowLink
	})
}

// ClearHoveredFlowLink unsets the hovered flow link
func (s *Store) ClearHoveredFlowLink() {
	s.update(func(st *State) Slice {
		if st.HoveredFlowLink == nil {
			return 0
		}
		st.HoveredFlowLink = nil
		return SliceHoveredFlowLink
	})
}

// ClearHover unsets every hover field in one update
func (s *Store) ClearHover() {
	s.update(func(st *State) Slice {
		var changed Slice
		if st.HoveredDay != nil {
			st.HoveredDay = nil
			changed |= SliceHoveredDay
		}
		if st.HoveredCity != nil {
			st.HoveredCity = nil
			changed |= SliceHoveredCity
		}
		if st.HoveredFlowNode != nil {
			st.HoveredFlowNode = nil
			changed |= SliceHoveredFlowNode
		}
		if st.HoveredFlowLink != nil {
			st.HoveredFlowLink = nil
			changed |= SliceHoveredFlowLink
		}
		return changed
	})
}

// Selections

// SelectedDays returns the selected days ascending
func (s *Store) SelectedDays() []dataset.DayKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SortedSelectedDays()
}

// SetSelectedDays replaces the day selection
func (s *Store) SetSelectedDays(days ...dataset.DayKey) {
	next := make(map[dataset.DayKey]struct{}, len(days))
	for _, d := range days {
		next[d] = struct{}{}
	}
	s.update(func(st *State) Slice {
		if equalSets(st.SelectedDays, next) {
			return 0
		}
		st.SelectedDays = next
		return SliceSelectedDays
	})
}

// ToggleSelectedDay adds day to the selection, or removes it if present
func (s *Store) ToggleSelectedDay(day dataset.DayKey) {
	s.update(func(st *State) Slice {
		toggle(st.SelectedDays, day)
		return SliceSelectedDays
	})
}

// SelectedCities returns the selected cities sorted
func (s *Store) SelectedCities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SortedSelectedCities()
}

// SetSelectedCities replaces the city selection
func (s *Store) SetSelectedCities(cities ...string) {
	next := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		next[c] = struct{}{}
	}
	s.update(func(st *State) Slice {
		if equalSets(st.SelectedCities, next) {
			return 0
		}
		st.SelectedCities = next
		return SliceSelectedCities
	})
}

// ToggleSelectedCity adds city to the selection, or removes it if present
func (s *Store) ToggleSelectedCity(city string) {
	s.update(func(st *State) Slice {
		toggle(st.SelectedCities, city)
		return SliceSelectedCities
	})
}

// SelectedFlowNodes returns the selected flow node names sorted
func (s *Store) SelectedFlowNodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SortedSelectedFlowNodes()
}

// SetSelectedFlowNodes replaces the flow node selection
func (s *Store) SetSelectedFlowNodes(names ...string) {
	next := make(map[string]struct{}, len(names))
	for _, n := range names {
		next[n] = struct{}{}
	}
	s.update(func(st *State) Slice {
		if equalSets(st.SelectedFlowNodes, next) {
			return 0
		}
		st.SelectedFlowNodes = next
		return SliceSelectedFlowNodes
	})
}

// ToggleSelectedFlowNode adds name to the selection, or removes it if present
func (s *Store) ToggleSelectedFlowNode(name string) {
	s.update(func(st *State) Slice {
		toggle(st.SelectedFlowNodes, name)
		return SliceSelectedFlowNodes
	})
}

func toggle[K comparable](set map[K]struct{}, k K) {
	if _, ok := set[k]; ok {
		delete(set, k)
		return
	}
	set[k] = struct{}{}
}

// Highlights

// HighlightField selects one of a panel's highlight fields
type HighlightField string

const (
	FieldState HighlightField = "state"
	FieldCity  HighlightField = "city"
)

// HighlightChange sets (Value non-nil) or clears (Value nil) one field of
// one panel's highlight
type HighlightChange struct {
	Panel Panel          `json:"panel"`
	Field HighlightField `json:"field"`
	Value *string        `json:"value"`
}

// Highlight returns the panel's highlight fields
func (s *Store) Highlight(p Panel) Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Highlights.Get(p).clone()
}

// SetHighlightedState sets the panel's highlighted state
func (s *Store) SetHighlightedState(p Panel, state string) {
	s.ApplyHighlights(HighlightChange{Panel: p, Field: FieldState, Value: &state})
}

// SetHighlightedCity sets the panel's highlighted city
func (s *Store) SetHighlightedCity(p Panel, city string) {
	s.ApplyHighlights(HighlightChange{Panel: p, Field: FieldCity, Value: &city})
}

// ClearHighlight unsets both highlight fields of the panel
func (s *Store) ClearHighlight(p Panel) {
	s.ApplyHighlights(
		HighlightChange{Panel: p, Field: FieldState},
		HighlightChange{Panel: p, Field: FieldCity},
	)
}

// ApplyHighlights applies changes in order as one update. Unknown panels
// and fields are ignored.
func (s *Store) ApplyHighlights(changes ...HighlightChange) {
	s.update(func(st *State) Slice {
		var changed Slice
		for _, c := range changes {
			h := st.Highlights.ptr(c.Panel)
			if h == nil {
				continue
			}
			var field **string
			switch c.Field {
			case FieldState:
				field = &h.State
			case FieldCity:
				field = &h.City
			default:
				continue
			}
			if eqPtr(*field, c.Value) {
				continue
			}
			*field = clonePtr(c.Value)
			changed |= highlightSlice(c.Panel)
		}
		return changed
	})
}

// Index and mode

// Index returns the data index
func (s *Store) Index() *dataset.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Index
}

// SetIndex publishes a new data index. The store keeps the pointer.
func (s *Store) SetIndex(idx *dataset.Index) {
	s.update(func(st *State) Slice {
		if st.Index == idx {
			return 0
		}
		st.Index = idx
		return SliceIndex
	})
}

// LinkMode returns the link display mode
func (s *Store) LinkMode() LinkDisplayMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LinkMode
}

// SetLinkMode sets the link display mode
func (s *Store) SetLinkMode(mode LinkDisplayMode) {
	s.update(func(st *State) Slice {
		if st.LinkMode == mode {
			return 0
		}
		st.LinkMode = mode
		return SliceLinkMode
	})
}

// ResetSelections clears every hover, selection and highlight field in a
// single update. The index and link mode are kept.
func (s *Store) ResetSelections() {
	s.update(func(st *State) Slice {
		fresh := initialState(st.LinkMode)
		fresh.Index = st.Index

		var changed Slice
		if st.HoveredDay != nil {
			changed |= SliceHoveredDay
		}
		if st.HoveredCity != nil {
			changed |= SliceHoveredCity
		}
		if st.HoveredFlowNode != nil {
			changed |= SliceHoveredFlowNode
		}
		if st.HoveredFlowLink != nil {
			changed |= SliceHoveredFlowLink
		}
		if len(st.SelectedDays) > 0 {
			changed |= SliceSelectedDays
		}
		if len(st.SelectedCities) > 0 {
			changed |= SliceSelectedCities
		}
		if len(st.SelectedFlowNodes) > 0 {
			changed |= SliceSelectedFlowNodes
		}
		for _, p := range Panels {
			if !st.Highlights.Get(p).IsZero() {
				changed |= highlightSlice(p)
			}
		}

		*st = fresh
		return changed
	})
}
