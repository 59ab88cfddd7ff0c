package connector

import (
	"fmt"
	"math"

	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/selection"
)

// filter drops lines that cannot be drawn sensibly: unusable endpoints,
// endpoints hugging the viewport edge, and time-bar ends that land on the
// histogram's axis labels or outside its zoomed view
func (e *Engine) filter(cands []candidate, cfg Config, stats *Stats) []candidate {
	viewport := e.registry.Viewport()
	timePanel, hasPanel := e.registry.Panel(anchor.ZoneTime)
	visible, hasVisible := e.registry.Visible(anchor.ZoneTime)

	out := cands[:0:0]
	for _, c := range cands {
		if !c.from.Finite() || !c.to.Finite() || c.from.Distance(c.to) < cfg.MinDistance {
			stats.Degenerate++
			continue
		}
		if nearEdge(c.from, viewport, cfg.EdgeMargin) || nearEdge(c.to, viewport, cfg.EdgeMargin) {
			stats.OffViewport++
			continue
		}
		if c.kind.timeBound() {
			end := c.timeEnd()
			if hasPanel && excludedFromTime(end, timePanel, cfg) {
				stats.Excluded++
				continue
			}
			if hasVisible && !visible.Contains(c.from) && !visible.Contains(c.to) {
				stats.NotVisible++
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// timeEnd returns the endpoint on the time bar
func (c candidate) timeEnd() anchor.Point {
	if anchor.IsTimeBar(c.fromKey) {
		return c.from
	}
	return c.to
}

// nearEdge reports whether p is within margin of the viewport border. An
// unknown viewport never rejects.
func nearEdge(p anchor.Point, v anchor.Viewport, margin float64) bool {
	if v.Width <= 0 || v.Height <= 0 {
		return false
	}
	return p.X < margin || p.Y < margin || p.X > v.Width-margin || p.Y > v.Height-margin
}

// excludedFromTime reports whether p falls in the time panel's reserved
// axis regions: the left strip, the top strip, or the enlarged top-left
// corner. A panel without area has no reserved regions.
func excludedFromTime(p anchor.Point, panel anchor.Rect, cfg Config) bool {
	if !panel.Valid() || !panel.Contains(p) {
		return false
	}
	rx := (p.X - panel.X) / panel.Width
	ry := (p.Y - panel.Y) / panel.Height
	switch {
	case rx < cfg.TimeLeftFraction:
		return true
	case ry < cfg.TimeTopFraction:
		return true
	case rx < cfg.TimeCornerFraction && ry < cfg.TimeCornerFraction:
		return true
	}
	return false
}

// shape computes the control points and path of a retained line. i is the
// line's position in the output and seeds the jitter.
func shape(c candidate, i int, cfg Config, mode selection.LinkDisplayMode, loop bool) Line {
	c1, c2 := controls(c, i, cfg)
	l := Line{
		From:     c.from,
		To:       c.to,
		FromKey:  c.fromKey,
		ToKey:    c.toKey,
		Kind:     c.kind,
		Control1: c1,
		Control2: c2,
		Style:    StyleFor(c.kind, mode),
		Loop:     loop,
	}
	l.Path = cubicPath(c.from, c1, c2, c.to)
	if loop {
		// return leg mirrored across the chord closes the path at the source
		r2 := reflect(c2, c.from, c.to)
		r1 := reflect(c1, c.from, c.to)
		l.Path += fmt.Sprintf(" C %.2f %.2f, %.2f %.2f, %.2f %.2f", r2.X, r2.Y, r1.X, r1.Y, c.from.X, c.from.Y)
	}
	return l
}

// controls returns the cubic Bezier control points. Map/histogram lines
// get a shallow arc lifted by a fraction of the horizontal span; everything
// else bends horizontally in proportion to the vertical span.
func controls(c candidate, i int, cfg Config) (anchor.Point, anchor.Point) {
	dx := c.to.X - c.from.X
	dy := c.to.Y - c.from.Y

	if c.kind.shallow() {
		lift := math.Abs(dx) * cfg.CityTimeCurve
		return anchor.Point{X: c.from.X + dx/3, Y: c.from.Y + dy/3 - lift},
			anchor.Point{X: c.from.X + 2*dx/3, Y: c.from.Y + 2*dy/3 - lift}
	}

	dir := 1.0
	if dx < 0 {
		dir = -1
	}
	bend := math.Abs(dy) * cfg.CurveFactor * (1 + cfg.Jitter*jitter(i))
	return anchor.Point{X: c.from.X + dir*bend, Y: c.from.Y},
		anchor.Point{X: c.to.X - dir*bend, Y: c.to.Y}
}

// jitter maps a line index to a repeatable variation in [-1, 1]
func jitter(i int) float64 {
	steps := []float64{0, 1, -1, 0.5, -0.5}
	return steps[i%len(steps)]
}

// reflect mirrors p across the line through a and b
func reflect(p, a, b anchor.Point) anchor.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	fx, fy := a.X+t*dx, a.Y+t*dy
	return anchor.Point{X: 2*fx - p.X, Y: 2*fy - p.Y}
}

func cubicPath(from, c1, c2, to anchor.Point) string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		from.X, from.Y, c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
}
