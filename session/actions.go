package session

import (
	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/connector"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/drop"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/selection"
)

// HoverCity sets or (with an empty name) clears the hovered city
func (s *Session) HoverCity(city string) {
	if city == "" {
		s.store.ClearHoveredCity()
		return
	}
	s.store.SetHoveredCity(city)
}

// HoverDay sets the hovered day; nil clears it
func (s *Session) HoverDay(day *dataset.DayKey) {
	if day == nil {
		s.store.ClearHoveredDay()
		return
	}
	s.store.SetHoveredDay(*day)
}

// HoverFlowNode sets the hovered flow node; nil clears it
func (s *Session) HoverFlowNode(node *selection.FlowNode) {
	if node == nil {
		s.store.ClearHoveredFlowNode()
		return
	}
	s.store.SetHoveredFlowNode(*node)
}

// HoverFlowLink sets the hovered flow link; nil clears it
func (s *Session) HoverFlowLink(link *selection.FlowLink) {
	if link == nil {
		s.store.ClearHoveredFlowLink()
		return
	}
	s.store.SetHoveredFlowLink(*link)
}

// ClearHover clears every hover field
func (s *Session) ClearHover() {
	s.store.ClearHover()
}

// ToggleDay adds or removes day from the selected days
func (s *Session) ToggleDay(day dataset.DayKey) {
	s.store.ToggleSelectedDay(day)
}

// ToggleCity adds or removes city from the selected cities
func (s *Session) ToggleCity(city string) {
	s.store.ToggleSelectedCity(city)
}

// ToggleFlowNode adds or removes a flow node from the selection
func (s *Session) ToggleFlowNode(name string) {
	s.store.ToggleSelectedFlowNode(name)
}

// Reset clears hover, selection and highlight state
func (s *Session) Reset() {
	s.store.ResetSelections()
}

// SetLinkMode switches how relations are shown
func (s *Session) SetLinkMode(mode selection.LinkDisplayMode) {
	s.store.SetLinkMode(mode)
}

// SetGeometry replaces the connector thresholds and redraws
func (s *Session) SetGeometry(cfg connector.Config) {
	s.engine.SetConfig(cfg)
	s.Refresh()
}

// UpdateAnchors applies a batch of anchor rectangles and removals reported
// by a panel, then redraws
func (s *Session) UpdateAnchors(set map[string]anchor.Rect, remove []string) {
	s.anchors.SetMany(set, remove)
	s.Refresh()
}

// SetPanelBounds records a panel's bounding box
func (s *Session) SetPanelBounds(zone anchor.Zone, rect anchor.Rect) {
	s.anchors.SetPanel(zone, rect)
	s.Refresh()
}

// SetVisibleRect records the zoomed view of a panel; nil forgets it
func (s *Session) SetVisibleRect(zone anchor.Zone, rect *anchor.Rect) {
	if rect == nil {
		s.anchors.ClearVisible(zone)
	} else {
		s.anchors.SetVisible(zone, *rect)
	}
	s.Refresh()
}

// SetViewport records the window size
func (s *Session) SetViewport(v anchor.Viewport) {
	s.anchors.SetViewport(v)
	s.Refresh()
}

// FlowLinkEntry is one node's connected cities as reported by the flow
// panel
type FlowLinkEntry struct {
	Name   string   `json:"name"`
	Layer  int      `json:"layer"`
	Cities []string `json:"cities"`
}

// SetFlowLinks installs the flow panel's node-to-city links
func (s *Session) SetFlowLinks(entries []FlowLinkEntry) {
	links := make(connector.StaticFlowLinks, len(entries))
	for _, e := range entries {
		node := selection.FlowNode{Name: e.Name, Layer: e.Layer}
		links[node] = append(links[node], e.Cities...)
	}
	s.engine.SetFlowLinks(links)
	s.Refresh()
}

// HandleDrop decodes a drop payload aimed at zone (or at the payload's own
// target zone when zone is empty) and applies its outcome. Errors are for
// logging only; the session state is never left half-applied.
func (s *Session) HandleDrop(raw []byte, zone string) (drop.Outcome, error) {
	p, err := drop.Decode(raw)
	if err != nil {
		s.logger.Warnw("Unparsable drop ignored", logger.FieldError, err.Error())
		return drop.Outcome{Kind: drop.OutcomeNone, Reason: "unparsable payload"}, err
	}
	if zone == "" {
		zone = p.TargetZoneID
	}
	z, err := drop.ParseZone(zone)
	if err != nil {
		s.logger.Warnw("Drop on unknown zone ignored", logger.FieldZone, zone)
		return drop.Outcome{Kind: drop.OutcomeNone, Reason: "unknown zone"}, err
	}

	bounds, _ := s.anchors.Panel(z)
	if s.inbox.Post(drop.Event{Payload: p, Zone: z, Bounds: bounds}) {
		s.logger.Debugw("Unconsumed drop replaced", logger.FieldZone, string(z))
	}
	return s.consumeDrop(), nil
}

// consumeDrop takes the pending drop, if any, and applies it
func (s *Session) consumeDrop() drop.Outcome {
	ev, ok := s.inbox.Take()
	if !ok {
		return drop.Outcome{Kind: drop.OutcomeNone, Reason: "nothing pending"}
	}

	out := drop.Classify(ev.Payload, ev.Zone, ev.Bounds)
	if len(out.Highlights) > 0 {
		s.store.ApplyHighlights(out.Highlights...)
	}
	if out.Kind == drop.OutcomeFilter && out.Filter != nil {
		if !s.queue.Upsert(*out.Filter) {
			s.logger.Debugw("Filter already queued",
				"type", string(out.Filter.Type),
				"value", out.Filter.Value)
		}
	}
	return out
}

// RemoveFilter removes the queue entry at index
func (s *Session) RemoveFilter(index int) error {
	if !s.queue.RemoveAt(index) {
		return errors.NewInvalidRequestError("no filter at index %d", index)
	}
	return nil
}

// ClearFilters empties the queue; the node-queue panel shows everything
func (s *Session) ClearFilters() {
	s.queue.Clear()
}
