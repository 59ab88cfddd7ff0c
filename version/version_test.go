package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-01", Version: "dev"}
	assert.Equal(t, "crossview dev (commit 0123456789abcdef, built 2026-01-01)", info.String())
	assert.Equal(t, "0123456", info.Short())

	info.Version = "v0.3.0"
	assert.Contains(t, info.String(), "crossview v0.3.0")

	assert.Equal(t, "abc", Info{CommitHash: "abc"}.Short())
}
