package session

import (
	"github.com/teranos/crossview/connector"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/filterq"
	"github.com/teranos/crossview/selection"
)

// UpdateType names an outbound message
type UpdateType string

const (
	UpdateHello       UpdateType = "hello"
	UpdateConnectors  UpdateType = "connectors"
	UpdateHighlights  UpdateType = "highlights"
	UpdateFilterQueue UpdateType = "filter_queue"
	UpdateRecords     UpdateType = "records"
	UpdateIndex       UpdateType = "index"
	UpdateError       UpdateType = "error"
)

// Update is one message for the browser
type Update struct {
	Type UpdateType  `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Sink receives a session's updates in order. Publish must not block.
type Sink interface {
	Publish(Update)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Update)

// Publish implements Sink
func (f SinkFunc) Publish(u Update) { f(u) }

type discard struct{}

func (discard) Publish(Update) {}

// Hello opens every session
type Hello struct {
	SessionID string                    `json:"session_id"`
	Version   string                    `json:"version"`
	Commit    string                    `json:"commit"`
	LinkMode  selection.LinkDisplayMode `json:"link_mode"`
	Records   int                       `json:"records"`
}

// Connectors carries the current line set
type Connectors struct {
	Lines    []connector.Line          `json:"lines"`
	Source   string                    `json:"source"`
	LinkMode selection.LinkDisplayMode `json:"link_mode"`
	Stats    connector.Stats           `json:"stats"`
}

// FilterQueue mirrors the node-queue panel's entries
type FilterQueue struct {
	Items []filterq.Descriptor `json:"items"`
	Mode  string               `json:"mode"`
}

// Records is the node-queue panel's data after filtering
type Records struct {
	Records []dataset.Record `json:"records"`
	Total   int              `json:"total"`
	Mode    string           `json:"mode"`
}

// Error reports a rejected client message. The interaction continues.
type Error struct {
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}
