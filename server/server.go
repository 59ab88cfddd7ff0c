// Package server is the crossview WebSocket server. Each browser tab gets a
// Client with its own session.Session; the hub tracks clients, the pumps
// move JSON between the socket and the session.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/session"
)

// Server coordinates the clients of one dataset
type Server struct {
	data *dataset.Dataset

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// Settings applied to new sessions; replaced on config reload
	links          am.LinksConfig
	allowedOrigins []string
	maxClients     int
	hoverRate      float64

	logger        *zap.SugaredLogger
	verbosity     atomic.Int32
	configWatcher *am.ConfigWatcher
	httpServer    *http.Server
	mux           *http.ServeMux

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32
}

// New creates a server over data with the given config. The hub is not
// running until Start (or Run) is called.
func New(data *dataset.Dataset, cfg *am.Config, verbosity int) (*Server, error) {
	if data == nil {
		data = dataset.New(nil)
	}
	if cfg == nil {
		cfg = &am.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		data:           data,
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		links:          cfg.GetLinksConfig(),
		allowedOrigins: cfg.GetServerAllowedOrigins(),
		maxClients:     cfg.GetServerMaxClients(),
		hoverRate:      cfg.Server.MaxMessagesPerSecond,
		logger:         logger.Logger.Named("server"),
		ctx:            ctx,
		cancel:         cancel,
	}
	s.verbosity.Store(int32(verbosity))
	s.setState(ServerStateRunning)
	s.setupHTTPRoutes()

	return s, nil
}

// Handler returns the server's HTTP routes
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Run starts the hub loop. It returns when the server context is cancelled.
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Hub stopped")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		}
	}
}

func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	limit := s.maxClients
	if len(s.clients) >= limit {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			logger.FieldClientID, client.id,
			"max_clients", limit)
		client.close()
		if client.conn != nil {
			client.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server full"),
				time.Now().Add(writeWait))
			client.conn.Close()
		}
		return
	}
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	if s.shouldOutput(logger.OutputClientStatus) {
		s.logger.Infow("Client connected",
			logger.FieldClientID, client.id,
			"total_clients", total)
	}

	client.start()
}

func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	_, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
	}
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	if ok && s.shouldOutput(logger.OutputClientStatus) {
		s.logger.Infow("Client disconnected",
			logger.FieldClientID, client.id,
			"total_clients", total)
	}
}

// removeSlowClient drops a client whose send buffer is full. Closing the
// connection ends its read pump.
func (s *Server) removeSlowClient(client *Client) {
	s.mu.Lock()
	_, ok := s.clients[client]
	delete(s.clients, client)
	s.mu.Unlock()
	if !ok {
		return
	}

	s.logger.Warnw("Removing slow client", logger.FieldClientID, client.id)
	client.close()
	if client.conn != nil {
		client.conn.Close()
	}
}

// clientCount returns the number of registered clients
func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// sessionConfig returns the starting config for a new session
func (s *Server) sessionConfig() session.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return session.ConfigFromLinks(s.links)
}

// applyLinks installs reloaded link settings. New sessions start from them;
// live sessions keep their link mode but pick up the new geometry.
func (s *Server) applyLinks(links am.LinksConfig) {
	geometry := session.GeometryFromLinks(links)

	s.mu.Lock()
	s.links = links
	live := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		live = append(live, c)
	}
	s.mu.Unlock()

	for _, c := range live {
		if c.session != nil {
			c.session.SetGeometry(geometry)
		}
	}
	if s.shouldOutput(logger.OutputConfig) {
		s.logger.Infow("Link settings applied",
			logger.FieldLinkMode, links.DefaultMode,
			"live_sessions", len(live))
	}
}

// shouldOutput reports whether category is shown at the server's verbosity
func (s *Server) shouldOutput(category logger.OutputCategory) bool {
	return logger.ShouldOutput(int(s.verbosity.Load()), category)
}

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Debugw("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
