package am

import (
	"github.com/teranos/crossview/am/geotime"
	"github.com/teranos/crossview/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && (*c.Server.Port < 0 || *c.Server.Port > 65535) {
		return errors.Newf("server.port must be in 1..65535, got %d", *c.Server.Port)
	}
	if c.Server.MaxMessagesPerSecond < 0 {
		return errors.Newf("server.max_messages_per_second must be >= 0, got %f", c.Server.MaxMessagesPerSecond)
	}
	if c.Server.MaxClients < 0 {
		return errors.Newf("server.max_clients must be >= 0, got %d", c.Server.MaxClients)
	}

	if c.Database.Timezone != "" {
		if _, err := geotime.NormalizeTimezone(c.Database.Timezone); err != nil {
			return errors.WithHint(
				errors.Wrap(err, "database.timezone"),
				"use an IANA name such as America/Chicago, or UTC",
			)
		}
	}

	return c.Links.Validate()
}

// Validate checks link geometry settings. Zero values mean "use default".
func (l LinksConfig) Validate() error {
	switch l.DefaultMode {
	case "", LinkModeHighlightOnly, LinkModeDirectLinks, LinkModeLoopLinks:
	default:
		return errors.Newf("links.default_mode must be one of %s, %s, %s; got %q",
			LinkModeHighlightOnly, LinkModeDirectLinks, LinkModeLoopLinks, l.DefaultMode)
	}

	if l.MinDistance < 0 {
		return errors.Newf("links.min_distance must be >= 0, got %f", l.MinDistance)
	}
	if l.EdgeMargin < 0 {
		return errors.Newf("links.edge_margin must be >= 0, got %f", l.EdgeMargin)
	}

	fractions := []struct {
		key   string
		value float64
	}{
		{"links.time_left_fraction", l.TimeLeftFraction},
		{"links.time_top_fraction", l.TimeTopFraction},
		{"links.time_corner_fraction", l.TimeCornerFraction},
		{"links.city_time_curve", l.CityTimeCurve},
		{"links.jitter", l.Jitter},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value >= 1 {
			return errors.Newf("%s must be in [0, 1), got %f", f.key, f.value)
		}
	}

	if l.CurveFactor < 0 || l.CurveFactor > 2 {
		return errors.Newf("links.curve_factor must be in [0, 2], got %f", l.CurveFactor)
	}

	return nil
}
