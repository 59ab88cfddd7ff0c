package selection

import (
	"sort"

	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/errors"
)

// LinkDisplayMode controls how cross-panel relationships are drawn
type LinkDisplayMode string

const (
	HighlightOnly LinkDisplayMode = "highlight_only"
	DirectLinks   LinkDisplayMode = "direct_links"
	LoopLinks     LinkDisplayMode = "loop_links"
)

// ParseLinkMode validates a mode name
func ParseLinkMode(s string) (LinkDisplayMode, error) {
	switch m := LinkDisplayMode(s); m {
	case HighlightOnly, DirectLinks, LoopLinks:
		return m, nil
	}
	return "", errors.NewInvalidRequestError("unknown link display mode %q", s)
}

// Panel identifies a destination panel that owns highlight fields
type Panel string

const (
	PanelMap  Panel = "map"
	PanelTime Panel = "time"
	PanelFlow Panel = "flow"
)

// Panels lists every panel with highlight fields
var Panels = []Panel{PanelMap, PanelTime, PanelFlow}

// Flow diagram layers, left to right
const (
	LayerState = iota
	LayerCity
	LayerOccupation
	LayerMerchant
)

// FlowNode is a node in the four-column flow diagram
type FlowNode struct {
	Name  string `json:"name"`
	Layer int    `json:"layer"`
}

// FlowLink is a link between two flow nodes
type FlowLink struct {
	Source FlowNode `json:"source"`
	Target FlowNode `json:"target"`
	Value  float64  `json:"value"`
}

// Highlight is the drop-derived highlight of one panel. Nil fields are unset.
type Highlight struct {
	State *string `json:"state"`
	City  *string `json:"city"`
}

// IsZero reports whether neither field is set
func (h Highlight) IsZero() bool {
	return h.State == nil && h.City == nil
}

func (h Highlight) equal(o Highlight) bool {
	return eqPtr(h.State, o.State) && eqPtr(h.City, o.City)
}

func (h Highlight) clone() Highlight {
	return Highlight{State: clonePtr(h.State), City: clonePtr(h.City)}
}

// Highlights holds the independent highlight fields of each panel
type Highlights struct {
	Map  Highlight `json:"map"`
	Time Highlight `json:"time"`
	Flow Highlight `json:"flow"`
}

// Get returns the panel's highlight; unknown panels are zero
func (h Highlights) Get(p Panel) Highlight {
	switch p {
	case PanelMap:
		return h.Map
	case PanelTime:
		return h.Time
	case PanelFlow:
		return h.Flow
	}
	return Highlight{}
}

func (h *Highlights) ptr(p Panel) *Highlight {
	switch p {
	case PanelMap:
		return &h.Map
	case PanelTime:
		return &h.Time
	case PanelFlow:
		return &h.Flow
	}
	return nil
}

// State is the shared interaction state. Values handed out by the Store are
// deep copies; the Index is shared and must not be modified.
type State struct {
	HoveredDay        *dataset.DayKey
	HoveredCity       *string
	HoveredFlowNode   *FlowNode
	HoveredFlowLink   *FlowLink
	SelectedDays      map[dataset.DayKey]struct{}
	SelectedCities    map[string]struct{}
	SelectedFlowNodes map[string]struct{}
	Highlights        Highlights
	Index             *dataset.Index
	LinkMode          LinkDisplayMode
}

func initialState(mode LinkDisplayMode) State {
	return State{
		SelectedDays:      make(map[dataset.DayKey]struct{}),
		SelectedCities:    make(map[string]struct{}),
		SelectedFlowNodes: make(map[string]struct{}),
		LinkMode:          mode,
	}
}

func (s State) clone() State {
	out := State{
		HoveredDay:        clonePtr(s.HoveredDay),
		HoveredCity:       clonePtr(s.HoveredCity),
		HoveredFlowNode:   clonePtr(s.HoveredFlowNode),
		HoveredFlowLink:   clonePtr(s.HoveredFlowLink),
		SelectedDays:      cloneSet(s.SelectedDays),
		SelectedCities:    cloneSet(s.SelectedCities),
		SelectedFlowNodes: cloneSet(s.SelectedFlowNodes),
		Highlights: Highlights{
			Map:  s.Highlights.Map.clone(),
			Time: s.Highlights.Time.clone(),
			Flow: s.Highlights.Flow.clone(),
		},
		Index:    s.Index,
		LinkMode: s.LinkMode,
	}
	return out
}

// HoverKind names the entity type driving connectors
type HoverKind int

const (
	HoverNone HoverKind = iota
	HoverDay
	HoverCity
	HoverFlowNode
)

func (k HoverKind) String() string {
	switch k {
	case HoverDay:
		return "day"
	case HoverCity:
		return "city"
	case HoverFlowNode:
		return "flow_node"
	}
	return "none"
}

// Hover is the single active hover source
type Hover struct {
	Kind HoverKind
	Day  dataset.DayKey
	City string
	Node FlowNode
}

// ActiveHover picks one hover source by priority flow node > city > day.
// Sources are never merged.
func (s State) ActiveHover() Hover {
	switch {
	case s.HoveredFlowNode != nil:
		return Hover{Kind: HoverFlowNode, Node: *s.HoveredFlowNode}
	case s.HoveredCity != nil:
		return Hover{Kind: HoverCity, City: *s.HoveredCity}
	case s.HoveredDay != nil:
		return Hover{Kind: HoverDay, Day: *s.HoveredDay}
	}
	return Hover{Kind: HoverNone}
}

// SortedSelectedDays returns the selected days ascending
func (s State) SortedSelectedDays() []dataset.DayKey {
	days := make([]dataset.DayKey, 0, len(s.SelectedDays))
	for d := range s.SelectedDays {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// SortedSelectedCities returns the selected cities sorted
func (s State) SortedSelectedCities() []string {
	return sortedKeys(s.SelectedCities)
}

// SortedSelectedFlowNodes returns the selected flow node names sorted
func (s State) SortedSelectedFlowNodes() []string {
	return sortedKeys(s.SelectedFlowNodes)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSet[K comparable](m map[K]struct{}) map[K]struct{} {
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func equalSets[K comparable](a, b map[K]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
