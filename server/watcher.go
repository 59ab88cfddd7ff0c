package server

import (
	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/logger"
)

// setupConfigWatcher watches the active config file. Reloads update the
// server limits and the link settings of new and live sessions.
func (s *Server) setupConfigWatcher() {
	configPath := am.ActiveConfigFile()
	if configPath == "" {
		s.logger.Infow("No config file found, using defaults (config watching disabled)")
		return
	}

	configWatcher, err := am.NewConfigWatcher(configPath)
	if err != nil {
		s.logger.Warnw("Failed to create config watcher, manual restart required for config changes",
			logger.FieldError, err.Error())
		return
	}

	s.configWatcher = configWatcher
	am.SetGlobalWatcher(configWatcher)

	configWatcher.OnReload(func(cfg *am.Config) error {
		s.applyConfig(cfg)
		return nil
	})

	configWatcher.Start()
	s.logger.Infow("Config watcher started", logger.FieldPath, configPath)
}

// applyConfig installs a reloaded config. The port and database are fixed
// for the life of the process.
func (s *Server) applyConfig(cfg *am.Config) {
	s.mu.Lock()
	s.allowedOrigins = cfg.GetServerAllowedOrigins()
	s.maxClients = cfg.GetServerMaxClients()
	s.hoverRate = cfg.Server.MaxMessagesPerSecond
	s.mu.Unlock()

	s.applyLinks(cfg.GetLinksConfig())
}
