package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/drop"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/selection"
)

// routeMessage applies one client message to the session. Rejected messages
// are answered with an error update; the connection stays open.
func (c *Client) routeMessage(msg *ClientMessage) {
	if c.limiter != nil && msg.isHover() && !c.limiter.Allow() {
		if c.server.shouldOutput(logger.OutputMessageRouting) {
			c.server.logger.Debugw("Hover dropped by rate limit",
				logger.FieldClientID, c.id,
				"type", msg.Type)
		}
		return
	}

	if err := c.dispatch(msg); err != nil {
		c.server.logger.Debugw("Client message rejected",
			logger.FieldClientID, c.id,
			"type", msg.Type,
			logger.FieldError, err.Error())
		c.session.PublishError(err)
	}
}

func (c *Client) dispatch(msg *ClientMessage) error {
	s := c.session

	switch msg.Type {
	case MsgHoverCity:
		s.HoverCity(strings.TrimSpace(msg.City))

	case MsgHoverDay:
		day, err := parseDayField(msg.Day)
		if err != nil {
			return err
		}
		s.HoverDay(day)

	case MsgHoverFlowNode:
		s.HoverFlowNode(msg.Node)

	case MsgHoverFlowLink:
		s.HoverFlowLink(msg.Link)

	case MsgClearHover:
		s.ClearHover()

	case MsgSelectDay:
		day, err := parseDayField(msg.Day)
		if err != nil {
			return err
		}
		if day == nil {
			return errors.NewInvalidRequestError("select_day requires a day")
		}
		s.ToggleDay(*day)

	case MsgSelectCity:
		if msg.City == "" {
			return errors.NewInvalidRequestError("select_city requires a city")
		}
		s.ToggleCity(msg.City)

	case MsgSelectFlowNode:
		name := msg.Name
		if name == "" && msg.Node != nil {
			name = msg.Node.Name
		}
		if name == "" {
			return errors.NewInvalidRequestError("select_flow_node requires a name")
		}
		s.ToggleFlowNode(name)

	case MsgAnchors:
		s.UpdateAnchors(msg.Anchors, msg.Remove)

	case MsgPanelBounds:
		zone, err := drop.ParseZone(msg.Zone)
		if err != nil {
			return errors.WithHint(err, "zones are map, time, flow and radial")
		}
		if msg.Rect == nil {
			return errors.NewInvalidRequestError("panel_bounds requires a rect")
		}
		s.SetPanelBounds(zone, *msg.Rect)

	case MsgVisibleRect:
		zone, err := drop.ParseZone(msg.Zone)
		if err != nil {
			return err
		}
		s.SetVisibleRect(zone, msg.Rect)

	case MsgViewport:
		if msg.Viewport == nil {
			return errors.NewInvalidRequestError("viewport requires width and height")
		}
		s.SetViewport(*msg.Viewport)

	case MsgFlowLinks:
		s.SetFlowLinks(msg.Links)

	case MsgDrop:
		return c.handleDrop(msg)

	case MsgFilterRemove:
		if msg.Index == nil {
			return errors.NewInvalidRequestError("filter_remove requires an index")
		}
		return s.RemoveFilter(*msg.Index)

	case MsgFilterClear:
		s.ClearFilters()

	case MsgSetLinkMode:
		return c.setLinkMode(msg.Mode, msg.Persist)

	case MsgReset:
		s.Reset()

	case MsgPing:
		c.sendJSON(PongMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})

	default:
		return errors.WithHint(
			errors.NewInvalidRequestError("unknown message type %q", msg.Type),
			"see the server package for supported message types")
	}
	return nil
}

// handleDrop feeds a drag payload to the session. Undecodable payloads are
// logged by the session and never reported back: a bad drop is a no-op.
func (c *Client) handleDrop(msg *ClientMessage) error {
	raw, err := unwrapPayload(msg.Payload)
	if err != nil {
		c.server.logger.Warnw("Drop payload ignored",
			logger.FieldClientID, c.id,
			logger.FieldError, err.Error())
		return nil
	}

	out, err := c.session.HandleDrop(raw, msg.Zone)
	if err != nil {
		return nil
	}
	if c.server.shouldOutput(logger.OutputDropOutcome) {
		c.server.logger.Infow("Drop handled",
			logger.FieldClientID, c.id,
			logger.FieldZone, msg.Zone,
			logger.FieldKind, out.Kind.String())
	}
	return nil
}

func (c *Client) setLinkMode(name string, persist bool) error {
	mode, err := selection.ParseLinkMode(name)
	if err != nil {
		return errors.WithHint(err, "modes are highlight_only, direct_links and loop_links")
	}
	c.session.SetLinkMode(mode)

	if !persist {
		return nil
	}
	if err := am.UpdateLinkDefaultMode(string(mode)); err != nil {
		c.server.logger.Warnw("Failed to persist link mode",
			logger.FieldLinkMode, string(mode),
			logger.FieldError, err.Error())
		return errors.Wrap(err, "link mode applied but not saved")
	}
	return nil
}

// parseDayField reads a day given as a JSON string or number. Absent or
// null means no day.
func parseDayField(raw json.RawMessage) (*dataset.DayKey, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errors.NewInvalidRequestError("day is not a string: %v", err)
		}
	}
	day, err := dataset.ParseDay(text)
	if err != nil {
		return nil, errors.NewInvalidRequestError("bad day: %v", err)
	}
	return &day, nil
}

// unwrapPayload accepts the drag payload as a JSON object or as the JSON
// string a browser's dataTransfer produces
func unwrapPayload(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.NewMalformedPayloadError("drop without payload")
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, errors.NewMalformedPayloadError("payload string: %v", err)
	}
	return []byte(text), nil
}

