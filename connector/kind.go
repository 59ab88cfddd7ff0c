// Package connector computes the curved lines the overlay draws between
// anchors of different panels while the user hovers an entity. Lines are
// rebuilt from scratch on every change; nothing is diffed or cached.
package connector

import (
	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/selection"
)

// Kind is the relation a line depicts
type Kind string

const (
	CityToTime        Kind = "city-to-time"
	CityToSankey      Kind = "city-to-sankey"
	CityToStateSankey Kind = "city-to-state-sankey"
	TimeToCity        Kind = "time-to-city"
	TimeToSankeyCity  Kind = "time-to-sankey-city"
	TimeToSankeyState Kind = "time-to-sankey-state"
	SankeyToCity      Kind = "sankey-to-city"
	SankeyToTime      Kind = "sankey-to-time"
)

// Kinds lists every relation
var Kinds = []Kind{
	CityToTime, CityToSankey, CityToStateSankey,
	TimeToCity, TimeToSankeyCity, TimeToSankeyState,
	SankeyToCity, SankeyToTime,
}

// timeBound reports whether one end of the line is a time histogram bar
func (k Kind) timeBound() bool {
	switch k {
	case CityToTime, TimeToCity, TimeToSankeyCity, TimeToSankeyState, SankeyToTime:
		return true
	}
	return false
}

// shallow reports whether the line joins the map and the histogram, which
// sit side by side and get the flat curve
func (k Kind) shallow() bool {
	return k == CityToTime || k == TimeToCity
}

// Style is how the overlay strokes a line
type Style struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
	Dash    string  `json:"dash,omitempty"`
}

// LoopDash is the stroke pattern of loop-mode lines
const LoopDash = "6 4"

var styles = map[Kind]Style{
	CityToTime:        {Color: "#4e79a7", Width: 1.5, Opacity: 0.55},
	CityToSankey:      {Color: "#f28e2b", Width: 2, Opacity: 0.7},
	CityToStateSankey: {Color: "#e15759", Width: 2.5, Opacity: 0.75},
	TimeToCity:        {Color: "#4e79a7", Width: 1.5, Opacity: 0.55},
	TimeToSankeyCity:  {Color: "#76b7b2", Width: 1.5, Opacity: 0.6},
	TimeToSankeyState: {Color: "#59a14f", Width: 2, Opacity: 0.6},
	SankeyToCity:      {Color: "#edc948", Width: 2, Opacity: 0.7},
	SankeyToTime:      {Color: "#b07aa1", Width: 1.5, Opacity: 0.55},
}

// StyleFor returns the stroke for kind under mode
func StyleFor(k Kind, mode selection.LinkDisplayMode) Style {
	s, ok := styles[k]
	if !ok {
		s = Style{Color: "#999999", Width: 1, Opacity: 0.5}
	}
	if mode == selection.LoopLinks {
		s.Dash = LoopDash
	}
	return s
}

// Line is one connector ready to draw
type Line struct {
	From     anchor.Point `json:"from"`
	To       anchor.Point `json:"to"`
	FromKey  string       `json:"fromKey"`
	ToKey    string       `json:"toKey"`
	Kind     Kind         `json:"kind"`
	Control1 anchor.Point `json:"control1"`
	Control2 anchor.Point `json:"control2"`
	Path     string       `json:"path"`
	Style    Style        `json:"style"`
	Loop     bool         `json:"loop,omitempty"`
}
