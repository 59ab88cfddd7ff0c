package server

// HTTP handlers:
// - WebSocket connections (HandleWebSocket)
// - Health checks (HandleHealth)
// - Data index (HandleIndex)
// - Configuration introspection (HandleConfig)

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/version"
)

// HandleWebSocket upgrades the connection and hands the new client to the
// hub. The client's pumps start once the hub accepts it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed",
			"origin", r.Header.Get("Origin"),
			logger.FieldError, err.Error())
		return
	}

	id := uuid.New().String()
	client := newClient(s, conn, id)
	s.logger.Debugw("WebSocket upgraded",
		logger.FieldClientID, shortID(id),
		logger.FieldAddress, r.RemoteAddr)

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		client.close()
		conn.Close()
	}
}

// HandleHealth returns server health status
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	info := version.Get()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   info.Version,
		Commit:    info.CommitHash,
		BuildTime: info.BuildTime,
		Clients:   s.clientCount(),
		Records:   s.data.Len(),
		State:     stateString(s.getState()),
		Verbosity: int(s.verbosity.Load()),
	})
}

// HandleIndex serves the day/city/state index the panels share
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if err := writeJSON(w, http.StatusOK, s.data.Index()); err != nil {
		s.logger.Errorw("Failed to write index", logger.FieldError, err.Error())
	}
}

// HandleConfig returns the effective configuration. With
// ?introspection=true each setting carries the file or env var it came from.
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("introspection") == "true" {
		introspection, err := am.GetConfigIntrospection()
		if err != nil {
			s.logger.Errorw("Failed to get config introspection", logger.FieldError, err.Error())
			writeError(w, http.StatusInternalServerError, "failed to get config introspection")
			return
		}
		writeJSON(w, http.StatusOK, introspection)
		return
	}

	s.mu.RLock()
	resp := map[string]interface{}{
		"links":                   s.links,
		"allowed_origins":         s.allowedOrigins,
		"max_clients":             s.maxClients,
		"max_messages_per_second": s.hoverRate,
		"config_file":             am.ActiveConfigFile(),
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}
