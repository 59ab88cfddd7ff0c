package am

import (
	"fmt"

	"github.com/spf13/viper"
)

var defaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "crossview.db")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", defaultAllowedOrigins)
	v.SetDefault("server.max_messages_per_second", 60.0) // one hover per frame
	v.SetDefault("server.max_clients", DefaultMaxClients)
	v.SetDefault("server.log_theme", "everforest")

	v.SetDefault("links.default_mode", LinkModeDirectLinks)
	v.SetDefault("links.min_distance", 1.0)
	v.SetDefault("links.edge_margin", 10.0)
	v.SetDefault("links.time_left_fraction", 0.10)
	v.SetDefault("links.time_top_fraction", 0.15)
	v.SetDefault("links.time_corner_fraction", 0.20)
	v.SetDefault("links.city_time_curve", 0.05)
	v.SetDefault("links.curve_factor", 0.5)
	v.SetDefault("links.jitter", 0.15)
}

// BindSensitiveEnvVars explicitly binds configuration that deployments
// commonly override without a file
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "CROSSVIEW_DATABASE_PATH")
	v.BindEnv("server.port", "CROSSVIEW_SERVER_PORT")
}

// GetServerPort returns the configured port, or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == nil || *c.Server.Port <= 0 {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "crossview.db"
	}
	return c.Database.Path
}

// GetServerAllowedOrigins returns the allowed CORS and websocket origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return append([]string(nil), defaultAllowedOrigins...)
	}
	return c.Server.AllowedOrigins
}

// GetServerMaxClients returns the connection cap (default: 100)
func (c *Config) GetServerMaxClients() int {
	if c.Server.MaxClients <= 0 {
		return DefaultMaxClients
	}
	return c.Server.MaxClients
}

// GetServerLogTheme returns the log theme (default: everforest)
func (c *Config) GetServerLogTheme() string {
	if c.Server.LogTheme == "" {
		return "everforest"
	}
	return c.Server.LogTheme
}

// GetLinksConfig returns the geometry settings with zero values replaced by defaults.
// Jitter of zero is kept: it disables the per-line variation.
func (c *Config) GetLinksConfig() LinksConfig {
	cfg := c.Links

	if cfg.DefaultMode == "" {
		cfg.DefaultMode = LinkModeDirectLinks
	}
	if cfg.MinDistance == 0 {
		cfg.MinDistance = 1
	}
	if cfg.EdgeMargin == 0 {
		cfg.EdgeMargin = 10
	}
	if cfg.TimeLeftFraction == 0 {
		cfg.TimeLeftFraction = 0.10
	}
	if cfg.TimeTopFraction == 0 {
		cfg.TimeTopFraction = 0.15
	}
	if cfg.TimeCornerFraction == 0 {
		cfg.TimeCornerFraction = 0.20
	}
	if cfg.CityTimeCurve == 0 {
		cfg.CityTimeCurve = 0.05
	}
	if cfg.CurveFactor == 0 {
		cfg.CurveFactor = 0.5
	}

	return cfg
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Server: {Port: %d, LogTheme: %s}, Links: {Mode: %s}}",
		c.GetDatabasePath(), c.GetServerPort(), c.GetServerLogTheme(), c.GetLinksConfig().DefaultMode)
}
