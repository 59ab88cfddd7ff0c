package server

import (
	"encoding/json"
	"time"

	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/selection"
	"github.com/teranos/crossview/session"
)

const (
	// ShutdownTimeout bounds how long Stop waits for goroutines to exit
	ShutdownTimeout = 60 * time.Second

	// hoverBurst is the token bucket size of the per-client hover limiter
	hoverBurst = 5
)

// ServerState represents the lifecycle state of the server
type ServerState int32

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Refusing new connections, closing existing ones
	ServerStateStopped                     // Fully stopped
)

// Inbound message types
const (
	MsgHoverCity      = "hover_city"
	MsgHoverDay       = "hover_day"
	MsgHoverFlowNode  = "hover_flow_node"
	MsgHoverFlowLink  = "hover_flow_link"
	MsgSelectDay      = "select_day"
	MsgSelectCity     = "select_city"
	MsgSelectFlowNode = "select_flow_node"
	MsgClearHover     = "clear_hover"
	MsgAnchors        = "anchors"
	MsgPanelBounds    = "panel_bounds"
	MsgVisibleRect    = "visible_rect"
	MsgViewport       = "viewport"
	MsgFlowLinks      = "flow_links"
	MsgDrop           = "drop"
	MsgFilterRemove   = "filter_remove"
	MsgFilterClear    = "filter_clear"
	MsgSetLinkMode    = "set_link_mode"
	MsgReset          = "reset"
	MsgPing           = "ping"
)

// ClientMessage is one message from the browser. Only the fields relevant to
// Type are read.
type ClientMessage struct {
	Type string `json:"type"`

	City string              `json:"city,omitempty"`
	Day  json.RawMessage     `json:"day,omitempty"` // YYYY-MM-DD, RFC 3339 or unix ms; null clears
	Node *selection.FlowNode `json:"node,omitempty"`
	Link *selection.FlowLink `json:"link,omitempty"`
	Name string              `json:"name,omitempty"` // select_flow_node

	Anchors  map[string]anchor.Rect  `json:"anchors,omitempty"`
	Remove   []string                `json:"remove,omitempty"`
	Zone     string                  `json:"zone,omitempty"`
	Rect     *anchor.Rect            `json:"rect,omitempty"`
	Viewport *anchor.Viewport        `json:"viewport,omitempty"`
	Links    []session.FlowLinkEntry `json:"links,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"` // drag payload, object or JSON string
	Index   *int            `json:"index,omitempty"`
	Mode    string          `json:"mode,omitempty"`
	Persist bool            `json:"persist,omitempty"` // save the link mode as the user default
}

// isHover reports whether the message sets a hover and is subject to the
// per-client rate limit. Clearing a hover is never dropped.
func (m *ClientMessage) isHover() bool {
	switch m.Type {
	case MsgHoverCity:
		return m.City != ""
	case MsgHoverDay:
		return len(m.Day) > 0 && string(m.Day) != "null"
	case MsgHoverFlowNode:
		return m.Node != nil
	case MsgHoverFlowLink:
		return m.Link != nil
	}
	return false
}

// PongMessage answers a client ping
type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Clients   int    `json:"clients"`
	Records   int    `json:"records"`
	State     string `json:"state"`
	Verbosity int    `json:"verbosity"`
}
