// Package geotime resolves the timezone used to cut transactions into
// calendar days. Day keys are only comparable across panels when every
// panel truncates in the same location, so the location is configured once
// (dataset.timezone) and resolved here.
package geotime

import (
	"strings"
	"time"

	"github.com/teranos/crossview/errors"
)

var timezoneByAbbreviation = map[string]string{
	"utc":  "UTC",
	"gmt":  "UTC",
	"pst":  "America/Los_Angeles",
	"pdt":  "America/Los_Angeles",
	"est":  "America/New_York",
	"edt":  "America/New_York",
	"cst":  "America/Chicago",
	"cdt":  "America/Chicago",
	"mst":  "America/Denver",
	"mdt":  "America/Denver",
	"akst": "America/Anchorage",
	"hst":  "Pacific/Honolulu",
	"bst":  "Europe/London",
	"cet":  "Europe/Berlin",
	"cest": "Europe/Berlin",
}

// US regions appear most often as the dataset's state column, so the
// keyword table maps those to the zone most of the region observes.
var locationKeywordTimezones = map[string]string{
	"new york":    "America/New_York",
	"eastern":     "America/New_York",
	"chicago":     "America/Chicago",
	"central":     "America/Chicago",
	"texas":       "America/Chicago",
	"denver":      "America/Denver",
	"mountain":    "America/Denver",
	"arizona":     "America/Phoenix",
	"pacific":     "America/Los_Angeles",
	"california":  "America/Los_Angeles",
	"los angeles": "America/Los_Angeles",
	"nevada":      "America/Los_Angeles",
	"alaska":      "America/Anchorage",
	"hawaii":      "Pacific/Honolulu",
}

// NormalizeTimezone attempts to resolve user input into a valid IANA timezone.
func NormalizeTimezone(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("timezone cannot be empty")
	}

	if isValidTimezone(trimmed) {
		if canonical := canonicalizeValidTimezone(trimmed); canonical != "" {
			return canonical, nil
		}
		return trimmed, nil
	}

	candidate := sanitizeTimezone(trimmed)
	if isValidTimezone(candidate) {
		return candidate, nil
	}

	lower := strings.ToLower(trimmed)
	if tz, ok := timezoneByAbbreviation[lower]; ok {
		return tz, nil
	}

	if tz := GuessTimezoneFromLocation(lower); tz != "" {
		return tz, nil
	}

	return "", errors.Newf("unknown timezone: %s", input)
}

// LoadLocation normalizes input and loads the resulting location.
// An empty input means UTC.
func LoadLocation(input string) (*time.Location, error) {
	if strings.TrimSpace(input) == "" {
		return time.UTC, nil
	}
	name, err := NormalizeTimezone(input)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %s", name)
	}
	return loc, nil
}

// GuessTimezoneFromLocation uses keyword heuristics to derive a timezone.
func GuessTimezoneFromLocation(location string) string {
	lower := strings.ToLower(strings.TrimSpace(location))
	for keyword, timezone := range locationKeywordTimezones {
		if strings.Contains(lower, keyword) {
			return timezone
		}
	}
	return ""
}

func sanitizeTimezone(tz string) string {
	trimmed := strings.TrimSpace(tz)
	trimmed = strings.Trim(trimmed, "\"'")
	trimmed = strings.ReplaceAll(trimmed, " ", "_")
	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		for i, part := range parts {
			parts[i] = title(part)
		}
		return strings.Join(parts, "/")
	}
	return title(trimmed)
}

func title(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func isValidTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// canonicalizeValidTimezone fixes casing ("america/chicago" -> "America/Chicago")
// but leaves already well-formed names such as "America/Port_of_Spain" alone.
func canonicalizeValidTimezone(tz string) string {
	if strings.ToLower(tz) == tz || hasIncorrectCapitalization(tz) {
		candidate := sanitizeTimezone(tz)
		if isValidTimezone(candidate) && candidate != tz {
			return candidate
		}
	}
	return ""
}

func hasIncorrectCapitalization(tz string) bool {
	if strings.ToLower(tz) == tz {
		return true
	}
	if strings.Contains(tz, "/") {
		for _, part := range strings.Split(tz, "/") {
			if len(part) > 0 && part[0] >= 'a' && part[0] <= 'z' {
				return true
			}
		}
	}
	return false
}
