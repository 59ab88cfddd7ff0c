package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "layer %d", 1)

	assert.Contains(t, wrapped.Error(), "layer 1")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHintf(New("bad zone"), "known zones are %s", "map, time, flow, radial")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "known zones are map, time, flow, radial", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsMalformedPayload(nil))
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"malformed payload", NewMalformedPayloadError("geoCircle without city"), IsMalformedPayload},
		{"invalid request", NewInvalidRequestError("unknown message %q", "hover"), IsInvalidRequestError},
		{"not found", Wrap(ErrNotFound, "anchor geo-circle-Reno"), IsNotFoundError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(Wrap(tt.err, "outer")))
		})
	}

	assert.False(t, IsMalformedPayload(ErrNotFound))
}

func ExampleWrap() {
	err := Wrap(New("connection refused"), "failed to open database")
	fmt.Println(err)
	// Output: failed to open database: connection refused
}
