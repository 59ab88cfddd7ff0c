package geotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimezone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"America/Chicago", "America/Chicago"},
		{"america/chicago", "America/Chicago"},
		{"PST", "America/Los_Angeles"},
		{"utc", "UTC"},
		{"Nevada", "America/Los_Angeles"},
		{"America/Port_of_Spain", "America/Port_of_Spain"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := NormalizeTimezone(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestNormalizeTimezoneErrors(t *testing.T) {
	_, err := NormalizeTimezone("   ")
	assert.Error(t, err)

	_, err = NormalizeTimezone("Atlantis/Nowhere")
	assert.Error(t, err)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("cst")
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}
