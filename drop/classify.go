package drop

import (
	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/filterq"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/selection"
)

// OutcomeKind says what a drop does
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeFilter
	OutcomeHighlight
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFilter:
		return "filter"
	case OutcomeHighlight:
		return "highlight"
	}
	return "none"
}

// Outcome is the result of classifying a drop. Highlights are applied in
// order as one store update; for a filter outcome they hold the clears of
// the other panels' fields.
type Outcome struct {
	Kind       OutcomeKind
	Filter     *filterq.Descriptor
	Highlights []selection.HighlightChange
	Reason     string
}

func none(reason string) Outcome {
	return Outcome{Kind: OutcomeNone, Reason: reason}
}

// Classify maps a payload dropped on zone to its effect. bounds is the
// destination panel's bounding box; when both the payload position and
// the bounds are known, a position outside the bounds is ignored.
func Classify(p Payload, zone anchor.Zone, bounds anchor.Rect) Outcome {
	fields := []interface{}{
		logger.FieldZone, string(zone),
		logger.FieldKind, string(p.Kind),
		"action", string(p.Action),
	}

	if !zone.Known() {
		log().Debugw("Drop on unknown zone ignored", fields...)
		return none("unknown zone")
	}
	if err := p.Validate(); err != nil {
		log().Warnw("Malformed drop payload ignored", append(fields, logger.FieldError, err.Error())...)
		return none("malformed payload")
	}
	if pt, ok := p.Point(); ok && bounds.Valid() && !bounds.Contains(pt) {
		log().Debugw("Drop outside destination bounds ignored", append(fields, "x", pt.X, "y", pt.Y)...)
		return none("outside destination")
	}

	var out Outcome
	switch zone {
	case anchor.ZoneMap:
		out = classifyHighlight(p, selection.PanelMap)
	case anchor.ZoneTime:
		out = classifyHighlight(p, selection.PanelTime)
	case anchor.ZoneFlow:
		out = classifyHighlight(p, selection.PanelFlow)
	case anchor.ZoneRadial:
		out = classifyRadial(p)
	}

	if out.Kind == OutcomeNone {
		log().Infow("Drop kind not supported by zone", append(fields, "reason", out.Reason)...)
	} else {
		log().Debugw("Drop classified", append(fields, "outcome", out.Kind.String())...)
	}
	return out
}

// classifyHighlight handles the panels that highlight directly. The map
// panel accepts flow nodes only; the time and flow panels also accept map
// circles.
func classifyHighlight(p Payload, dest selection.Panel) Outcome {
	var sets []selection.HighlightChange

	switch p.Kind {
	case KindGeoCircle:
		if dest == selection.PanelMap {
			return none("map does not accept geoCircle")
		}
		if dest == selection.PanelFlow && p.State != "" {
			sets = append(sets, set(dest, selection.FieldState, p.State))
		}
		sets = append(sets, set(dest, selection.FieldCity, p.City))
	case KindSankeyNode:
		switch *p.Layer {
		case selection.LayerState:
			sets = append(sets, set(dest, selection.FieldState, p.Name))
		case selection.LayerCity:
			sets = append(sets, set(dest, selection.FieldCity, p.Name))
		default:
			return none("only state and city nodes highlight")
		}
	default:
		return none(string(p.Kind) + " not accepted")
	}

	return Outcome{
		Kind:       OutcomeHighlight,
		Highlights: append(clearOthers(dest), sets...),
	}
}

// classifyRadial handles the node-queue panel: a map circle becomes a city
// filter and every drop-derived highlight is cleared
func classifyRadial(p Payload) Outcome {
	if p.Kind != KindGeoCircle {
		return none(string(p.Kind) + " not supported by node queue")
	}
	d := filterq.NewDescriptor(filterq.TypeCity, p.City)
	return Outcome{
		Kind:       OutcomeFilter,
		Filter:     &d,
		Highlights: clearOthers(""),
	}
}

func set(p selection.Panel, f selection.HighlightField, v string) selection.HighlightChange {
	return selection.HighlightChange{Panel: p, Field: f, Value: &v}
}

// clearOthers clears both fields of every panel except dest
func clearOthers(dest selection.Panel) []selection.HighlightChange {
	var out []selection.HighlightChange
	for _, p := range selection.Panels {
		if p == dest {
			continue
		}
		out = append(out,
			selection.HighlightChange{Panel: p, Field: selection.FieldState},
			selection.HighlightChange{Panel: p, Field: selection.FieldCity},
		)
	}
	return out
}
