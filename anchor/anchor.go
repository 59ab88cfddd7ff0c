// Package anchor addresses the on-screen elements connector lines attach
// to. Panels report the rectangle of every data-bound element under a key
// derived from the entity's kind and name; the connector engine looks the
// keys up without knowing which panel owns them.
package anchor

import (
	"fmt"
	"math"
	"strings"

	"github.com/teranos/crossview/dataset"
)

// Point is a screen position in CSS pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether neither coordinate is NaN or infinite
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the euclidean distance to q
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Rect is an element's bounding box as reported by getBoundingClientRect
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Valid reports whether the rectangle has finite coordinates and a
// positive area. Unmounted elements report zero-sized boxes.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// Zone identifies a destination panel for drops and panel bounds
type Zone string

const (
	ZoneMap    Zone = "map"
	ZoneTime   Zone = "time"
	ZoneFlow   Zone = "flow"
	ZoneRadial Zone = "radial"
)

// Zones lists every known zone
var Zones = []Zone{ZoneMap, ZoneTime, ZoneFlow, ZoneRadial}

// Known reports whether z is one of Zones
func (z Zone) Known() bool {
	switch z {
	case ZoneMap, ZoneTime, ZoneFlow, ZoneRadial:
		return true
	}
	return false
}

const (
	geoCirclePrefix  = "geo-circle-"
	timeBarPrefix    = "time-bar-"
	sankeyNodePrefix = "sankey-node-"
)

var layerNames = []string{"state", "city", "occupation", "merchant"}

// LayerName maps a flow diagram column to its anchor segment. Unknown
// layers return false.
func LayerName(layer int) (string, bool) {
	if layer < 0 || layer >= len(layerNames) {
		return "", false
	}
	return layerNames[layer], true
}

// GeoCircleKey addresses a city's circle on the map
func GeoCircleKey(city string) string {
	return geoCirclePrefix + city
}

// TimeBarKey addresses a day's bar in the time histogram
func TimeBarKey(day dataset.DayKey) string {
	return timeBarPrefix + day.ISO()
}

// SankeyNodeKey addresses a node of the flow diagram. Spaces in the name
// become dashes. An unknown layer yields an empty key, which never resolves.
func SankeyNodeKey(layer int, name string) string {
	seg, ok := LayerName(layer)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s%s-%s", sankeyNodePrefix, seg, strings.ReplaceAll(name, " ", "-"))
}

// IsTimeBar reports whether key addresses a time histogram bar
func IsTimeBar(key string) bool {
	return strings.HasPrefix(key, timeBarPrefix)
}
