// Package drop turns an element dragged out of one panel and dropped on
// another into either a filter for the destination's queue or a set of
// highlight changes. Classification never fails: anything it does not
// understand is a logged no-op.
package drop

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/logger"
)

func log() *zap.SugaredLogger {
	return logger.Logger.Named("drop")
}

// Kind is the type of element being dragged
type Kind string

const (
	KindGeoCircle  Kind = "geoCircle"
	KindSankeyNode Kind = "sankeyNode"
	KindTimeBar    Kind = "timeBar"
)

// Action is the browser event that ended the drag
type Action string

const (
	ActionDrop    Action = "drop"
	ActionDragEnd Action = "dragend"
)

// Payload is the drag data a source panel attaches. X and Y are the
// pointer position when the drag ended, if the source reported it.
type Payload struct {
	Kind         Kind     `json:"kind"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Name         string   `json:"name,omitempty"`
	Layer        *int     `json:"layer,omitempty"`
	Date         string   `json:"date,omitempty"`
	TargetZoneID string   `json:"targetZoneId,omitempty"`
	Action       Action   `json:"action,omitempty"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
}

// Decode parses a payload. Errors wrap ErrMalformedPayload.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if len(data) == 0 {
		return p, errors.NewMalformedPayloadError("empty payload")
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return p, nil
}

// Validate checks that the fields required by the payload's kind are
// present
func (p Payload) Validate() error {
	switch p.Kind {
	case KindGeoCircle:
		if strings.TrimSpace(p.City) == "" {
			return errors.NewMalformedPayloadError("geoCircle payload without city")
		}
	case KindSankeyNode:
		if strings.TrimSpace(p.Name) == "" {
			return errors.NewMalformedPayloadError("sankeyNode payload without name")
		}
		if p.Layer == nil {
			return errors.NewMalformedPayloadError("sankeyNode %q without layer", p.Name)
		}
		if _, ok := anchor.LayerName(*p.Layer); !ok {
			return errors.NewMalformedPayloadError("sankeyNode %q has unknown layer %d", p.Name, *p.Layer)
		}
	case KindTimeBar:
		if _, err := dataset.ParseDay(p.Date); err != nil {
			return errors.Wrap(errors.ErrMalformedPayload, err.Error())
		}
	case "":
		return errors.NewMalformedPayloadError("payload without kind")
	default:
		return errors.NewMalformedPayloadError("unknown kind %q", p.Kind)
	}
	switch p.Action {
	case "", ActionDrop, ActionDragEnd:
	default:
		return errors.NewMalformedPayloadError("unknown action %q", p.Action)
	}
	return nil
}

// Point returns the reported pointer position
func (p Payload) Point() (anchor.Point, bool) {
	if p.X == nil || p.Y == nil {
		return anchor.Point{}, false
	}
	return anchor.Point{X: *p.X, Y: *p.Y}, true
}

// ParseZone validates a zone identifier. Errors wrap ErrUnknownZone.
func ParseZone(s string) (anchor.Zone, error) {
	z := anchor.Zone(strings.TrimSpace(s))
	if !z.Known() {
		return "", errors.Wrapf(errors.ErrUnknownZone, "%q", s)
	}
	return z, nil
}
