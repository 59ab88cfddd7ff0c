// Package session coordinates one browser tab: its selection store, anchor
// registry, node-queue filter queue, drop inbox and connector engine. The
// server feeds it client events; it pushes updates to a Sink.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/anchor"
	"github.com/teranos/crossview/connector"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/drop"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/filterq"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/selection"
	"github.com/teranos/crossview/version"
)

// Config is a session's starting link mode and geometry. Context carries
// the logging fields of the owning connection; Verbosity gates the
// per-line connector dump.
type Config struct {
	LinkMode  selection.LinkDisplayMode
	Geometry  connector.Config
	Sink      Sink
	Context   context.Context
	Verbosity int
}

// ConfigFromLinks maps the [links] config section. An unknown mode falls
// back to direct links.
func ConfigFromLinks(l am.LinksConfig) Config {
	mode, err := selection.ParseLinkMode(l.DefaultMode)
	if err != nil {
		mode = selection.DirectLinks
	}
	return Config{
		LinkMode: mode,
		Geometry: GeometryFromLinks(l),
	}
}

// GeometryFromLinks maps the [links] thresholds onto the connector engine
func GeometryFromLinks(l am.LinksConfig) connector.Config {
	return connector.Config{
		MinDistance:        l.MinDistance,
		EdgeMargin:         l.EdgeMargin,
		TimeLeftFraction:   l.TimeLeftFraction,
		TimeTopFraction:    l.TimeTopFraction,
		TimeCornerFraction: l.TimeCornerFraction,
		CityTimeCurve:      l.CityTimeCurve,
		CurveFactor:        l.CurveFactor,
		Jitter:             l.Jitter,
	}
}

// Session is the coordinator for one client
type Session struct {
	id        string
	data      *dataset.Dataset
	store     *selection.Store
	anchors   *anchor.Registry
	queue     *filterq.Queue
	engine    *connector.Engine
	inbox     drop.Inbox
	sink      Sink
	logger    *zap.SugaredLogger
	verbosity int

	// computeMu orders connector recomputation and publication
	computeMu sync.Mutex
	// hoverState is the flow highlight set on behalf of a city hover;
	// hoverOwned is false when the flow panel already showed that value
	hoverState string
	hoverOwned bool

	unsubs []func()
}

// New builds a session over data. Nothing is published until Start.
func New(id string, data *dataset.Dataset, cfg Config) *Session {
	if cfg.Sink == nil {
		cfg.Sink = discard{}
	}
	if cfg.LinkMode == "" {
		cfg.LinkMode = selection.DirectLinks
	}
	if cfg.Context == nil {
		cfg.Context = logger.WithSessionID(context.Background(), id)
	}

	anchors := anchor.NewRegistry()
	s := &Session{
		id:        id,
		data:      data,
		store:     selection.NewStore(cfg.LinkMode),
		anchors:   anchors,
		queue:     filterq.New(),
		engine:    connector.NewEngine(anchors, data, cfg.Geometry),
		sink:      cfg.Sink,
		logger:    logger.LoggerFromContext(cfg.Context).Named("session"),
		verbosity: cfg.Verbosity,
	}

	s.store.SetIndex(data.Index())

	s.unsubs = append(s.unsubs,
		s.store.Subscribe("connectors", func(snap selection.State, _ selection.Slice) {
			s.recompute(snap)
		}, selection.SliceHover, selection.SliceSelection, selection.SliceIndex, selection.SliceLinkMode),
		s.store.Subscribe("highlights", func(snap selection.State, _ selection.Slice) {
			s.sink.Publish(Update{Type: UpdateHighlights, Data: snap.Highlights})
		}, selection.SliceHighlight),
		s.store.Subscribe("index", func(snap selection.State, _ selection.Slice) {
			s.sink.Publish(Update{Type: UpdateIndex, Data: snap.Index})
		}, selection.SliceIndex),
	)

	s.queue.OnModeChange(func(m filterq.Mode) {
		s.logger.Infow("Node queue layout switched", "mode", m.String())
	})
	s.queue.OnChange(func(items []filterq.Descriptor) {
		s.publishQueue(items)
		s.publishRecords()
	})

	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Store returns the session's selection store
func (s *Session) Store() *selection.Store { return s.store }

// Anchors returns the session's anchor registry
func (s *Session) Anchors() *anchor.Registry { return s.anchors }

// Queue returns the node-queue panel's filter queue
func (s *Session) Queue() *filterq.Queue { return s.queue }

// Engine returns the connector engine
func (s *Session) Engine() *connector.Engine { return s.engine }

// Start publishes the initial state: hello, index, records, highlights and
// connectors
func (s *Session) Start() {
	info := version.Get()
	snap := s.store.Snapshot()
	s.sink.Publish(Update{Type: UpdateHello, Data: Hello{
		SessionID: s.id,
		Version:   info.Version,
		Commit:    info.Short(),
		LinkMode:  snap.LinkMode,
		Records:   s.data.Len(),
	}})
	s.sink.Publish(Update{Type: UpdateIndex, Data: snap.Index})
	s.publishQueue(s.queue.Items())
	s.publishRecords()
	s.sink.Publish(Update{Type: UpdateHighlights, Data: snap.Highlights})
	s.recompute(snap)
}

// Close detaches the session from its store
func (s *Session) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// recompute rebuilds the connectors for snap and publishes them. A city
// hover's flow highlight is applied to the store afterwards.
func (s *Session) recompute(snap selection.State) {
	s.computeMu.Lock()
	res := s.engine.Compute(snap)
	s.sink.Publish(Update{Type: UpdateConnectors, Data: Connectors{
		Lines:    res.Lines,
		Source:   res.Source.Kind.String(),
		LinkMode: snap.LinkMode,
		Stats:    res.Stats,
	}})
	if logger.ShouldOutput(s.verbosity, logger.OutputLineDump) {
		for _, l := range res.Lines {
			s.logger.Debugw("Connector line",
				logger.FieldKind, string(l.Kind),
				"from", l.FromKey,
				"to", l.ToKey,
				"path", l.Path)
		}
	}

	var set, unset string
	if res.FlowHighlight != nil {
		set = *res.FlowHighlight
		if set != s.hoverState {
			cur := s.store.Highlight(selection.PanelFlow).State
			s.hoverOwned = cur == nil || *cur != set
			s.hoverState = set
		}
	} else if s.hoverState != "" {
		if s.hoverOwned {
			unset = s.hoverState
		}
		s.hoverState = ""
		s.hoverOwned = false
	}
	s.computeMu.Unlock()

	switch {
	case set != "":
		s.store.SetHighlightedState(selection.PanelFlow, set)
	case unset != "":
		// only undo what the hover set; a drop may have replaced it
		if cur := s.store.Highlight(selection.PanelFlow).State; cur != nil && *cur == unset {
			s.store.ApplyHighlights(selection.HighlightChange{Panel: selection.PanelFlow, Field: selection.FieldState})
		}
	}
}

// Refresh recomputes connectors from the current state. Panels call it
// through anchor updates; the server calls it after a config reload.
func (s *Session) Refresh() {
	s.recompute(s.store.Snapshot())
}

func (s *Session) publishQueue(items []filterq.Descriptor) {
	if items == nil {
		items = []filterq.Descriptor{}
	}
	s.sink.Publish(Update{Type: UpdateFilterQueue, Data: FilterQueue{
		Items: items,
		Mode:  modeOf(len(items)).String(),
	}})
}

// publishRecords sends the node-queue panel its data: everything when the
// queue is empty, the de-duplicated matches otherwise
func (s *Session) publishRecords() {
	all := s.data.Records()
	shown := s.queue.Apply(all)
	s.sink.Publish(Update{Type: UpdateRecords, Data: Records{
		Records: shown,
		Total:   len(all),
		Mode:    s.queue.Mode().String(),
	}})
}

func modeOf(n int) filterq.Mode {
	if n == 0 {
		return filterq.ModeAll
	}
	return filterq.ModeFiltered
}

// PublishError tells the client a message was rejected
func (s *Session) PublishError(err error) {
	msg := Error{Message: err.Error()}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		msg.Hint = hints[0]
	}
	s.sink.Publish(Update{Type: UpdateError, Data: msg})
}
