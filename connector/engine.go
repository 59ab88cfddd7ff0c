package connector

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/selection"
)

// Config holds the geometry thresholds. Fractions are of the time panel's
// bounding box.
type Config struct {
	MinDistance        float64 `json:"min_distance"`
	EdgeMargin         float64 `json:"edge_margin"`
	TimeLeftFraction   float64 `json:"time_left_fraction"`
	TimeTopFraction    float64 `json:"time_top_fraction"`
	TimeCornerFraction float64 `json:"time_corner_fraction"`
	CityTimeCurve      float64 `json:"city_time_curve"`
	CurveFactor        float64 `json:"curve_factor"`
	Jitter             float64 `json:"jitter"`
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() Config {
	return Config{
		MinDistance:        1,
		EdgeMargin:         10,
		TimeLeftFraction:   0.10,
		TimeTopFraction:    0.15,
		TimeCornerFraction: 0.20,
		CityTimeCurve:      0.05,
		CurveFactor:        0.5,
		Jitter:             0.15,
	}
}

// Stats counts what happened to candidate lines in one pass
type Stats struct {
	Candidates  int `json:"candidates"`
	Unresolved  int `json:"unresolved"`
	Degenerate  int `json:"degenerate"`
	OffViewport int `json:"off_viewport"`
	Excluded    int `json:"excluded"`
	NotVisible  int `json:"not_visible"`
	Kept        int `json:"kept"`
}

// Result is one computation. FlowHighlight is the state the flow panel
// should highlight because of a city hover; it is set even when the link
// mode draws no lines.
type Result struct {
	Lines         []Line          `json:"lines"`
	FlowHighlight *string         `json:"flow_highlight,omitempty"`
	Source        selection.Hover `json:"-"`
	Stats         Stats           `json:"stats"`
}

// Engine turns a state snapshot and the anchor registry into lines
type Engine struct {
	registry *anchor.Registry
	data     *dataset.Dataset
	logger   *zap.SugaredLogger

	mu     sync.RWMutex
	cfg    Config
	links  FlowLinks
	stored FlowLinks
}

// NewEngine creates an engine reading anchors from reg. data resolves a
// city's state and provides flow links until the flow panel reports its own.
func NewEngine(reg *anchor.Registry, data *dataset.Dataset, cfg Config) *Engine {
	stored := NewDatasetFlowLinks(data)
	return &Engine{
		registry: reg,
		data:     data,
		logger:   logger.ComponentLogger("connector"),
		cfg:      cfg,
		stored:   stored,
		links:    stored,
	}
}

// SetConfig replaces the thresholds
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Config returns the thresholds in use
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetFlowLinks installs links reported by the flow panel. Nodes it does not
// know fall back to links derived from the dataset; nil restores those.
func (e *Engine) SetFlowLinks(fl FlowLinks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fl == nil {
		e.links = e.stored
		return
	}
	e.links = layered{fl, e.stored}
}

// candidate is a line whose endpoints resolved
type candidate struct {
	kind           Kind
	fromKey, toKey string
	from, to       anchor.Point
}

// Compute builds the lines for st. In HighlightOnly mode the result has no
// lines but still carries FlowHighlight.
func (e *Engine) Compute(st selection.State) Result {
	e.mu.RLock()
	cfg := e.cfg
	links := e.links
	e.mu.RUnlock()

	hover := st.ActiveHover()
	res := Result{Source: hover, Lines: []Line{}}

	var cands []candidate
	switch hover.Kind {
	case selection.HoverCity:
		cands, res.FlowHighlight = e.fromCity(st.Index, hover.City, &res.Stats)
	case selection.HoverDay:
		cands = e.fromDay(st.Index, hover.Day, &res.Stats)
	case selection.HoverFlowNode:
		cands = e.fromFlowNode(st.Index, links, hover.Node, &res.Stats)
	default:
		return res
	}

	if st.LinkMode == selection.HighlightOnly {
		return res
	}

	kept := e.filter(cands, cfg, &res.Stats)
	loop := st.LinkMode == selection.LoopLinks
	for i, c := range kept {
		res.Lines = append(res.Lines, shape(c, i, cfg, st.LinkMode, loop))
	}
	res.Stats.Kept = len(res.Lines)

	e.logger.Debugw("Connectors computed",
		"source", hover.Kind.String(),
		logger.FieldLinkMode, string(st.LinkMode),
		logger.FieldLines, len(res.Lines),
		"candidates", res.Stats.Candidates,
		"unresolved", res.Stats.Unresolved,
	)
	return res
}

// pair resolves both anchors and appends a candidate. A miss counts as
// unresolved and is not an error.
func (e *Engine) pair(out []candidate, kind Kind, fromKey, toKey string, stats *Stats) []candidate {
	stats.Candidates++
	from, ok := e.registry.Center(fromKey)
	if !ok {
		stats.Unresolved++
		return out
	}
	to, ok := e.registry.Center(toKey)
	if !ok {
		stats.Unresolved++
		return out
	}
	return append(out, candidate{kind: kind, fromKey: fromKey, toKey: toKey, from: from, to: to})
}

func (e *Engine) fromCity(idx *dataset.Index, city string, stats *Stats) ([]candidate, *string) {
	var out []candidate
	src := anchor.GeoCircleKey(city)

	if idx != nil {
		for _, day := range idx.Days() {
			if _, ok := idx.DayToCities[day][city]; !ok {
				continue
			}
			out = e.pair(out, CityToTime, src, anchor.TimeBarKey(day), stats)
		}
	}

	out = e.pair(out, CityToSankey, src, anchor.SankeyNodeKey(selection.LayerCity, city), stats)

	var highlight *string
	if state, ok := e.data.StateOfCity(city); ok {
		stateKey := anchor.SankeyNodeKey(selection.LayerState, state)
		if _, found := e.registry.Lookup(stateKey); found {
			highlight = &state
			out = e.pair(out, CityToStateSankey, src, stateKey, stats)
		}
	}
	return out, highlight
}

func (e *Engine) fromDay(idx *dataset.Index, day dataset.DayKey, stats *Stats) []candidate {
	if idx == nil {
		return nil
	}
	var out []candidate
	src := anchor.TimeBarKey(day)
	for _, city := range idx.CitiesOn(day) {
		out = e.pair(out, TimeToCity, src, anchor.GeoCircleKey(city), stats)
		out = e.pair(out, TimeToSankeyCity, src, anchor.SankeyNodeKey(selection.LayerCity, city), stats)
	}
	for _, state := range idx.StatesOn(day) {
		out = e.pair(out, TimeToSankeyState, src, anchor.SankeyNodeKey(selection.LayerState, state), stats)
	}
	return out
}

func (e *Engine) fromFlowNode(idx *dataset.Index, links FlowLinks, node selection.FlowNode, stats *Stats) []candidate {
	src := anchor.SankeyNodeKey(node.Layer, node.Name)
	if src == "" || links == nil {
		return nil
	}

	var out []candidate
	days := make(map[dataset.DayKey]struct{})
	for _, city := range links.CitiesOf(node) {
		out = e.pair(out, SankeyToCity, src, anchor.GeoCircleKey(city), stats)
		if idx == nil {
			continue
		}
		for day := range idx.CityToDays[city] {
			days[day] = struct{}{}
		}
	}

	// one line per day, however many connected cities share it
	ordered := make([]dataset.DayKey, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, day := range ordered {
		out = e.pair(out, SankeyToTime, src, anchor.TimeBarKey(day), stats)
	}
	return out
}
