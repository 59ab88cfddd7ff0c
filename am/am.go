package am

// Config represents the crossview configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Links    LinksConfig    `mapstructure:"links"`
}

// DatabaseConfig configures the SQLite transaction store
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	Timezone string `mapstructure:"timezone"` // Zone for stored timestamps without an offset (default: UTC)
}

// ServerConfig configures the crossview web server
type ServerConfig struct {
	Port                 *int     `mapstructure:"port"` // nil = default 8787, 0 is invalid (omit for default)
	AllowedOrigins       []string `mapstructure:"allowed_origins"`
	MaxMessagesPerSecond float64  `mapstructure:"max_messages_per_second"` // Per-client hover budget, 0 = unlimited
	MaxClients           int      `mapstructure:"max_clients"`
	LogTheme             string   `mapstructure:"log_theme"` // Color theme: gruvbox, everforest
}

// LinksConfig configures connector line geometry.
// Fractions are relative to the time panel's bounding box.
type LinksConfig struct {
	DefaultMode        string  `mapstructure:"default_mode"`         // highlight_only, direct_links, loop_links
	MinDistance        float64 `mapstructure:"min_distance"`         // px; shorter lines are dropped
	EdgeMargin         float64 `mapstructure:"edge_margin"`          // px from the viewport edge
	TimeLeftFraction   float64 `mapstructure:"time_left_fraction"`   // axis label strip
	TimeTopFraction    float64 `mapstructure:"time_top_fraction"`    // title strip
	TimeCornerFraction float64 `mapstructure:"time_corner_fraction"` // top-left corner square
	CityTimeCurve      float64 `mapstructure:"city_time_curve"`      // control offset as share of horizontal span
	CurveFactor        float64 `mapstructure:"curve_factor"`         // control offset as share of vertical span
	Jitter             float64 `mapstructure:"jitter"`               // max per-line variation
}

// Server port constants
const (
	DefaultServerPort  = 8787
	FallbackServerPort = 8788
	DefaultMaxClients  = 100
)

// Link display modes accepted by links.default_mode
const (
	LinkModeHighlightOnly = "highlight_only"
	LinkModeDirectLinks   = "direct_links"
	LinkModeLoopLinks     = "loop_links"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
