// Package display renders command output for humans or scripts.
package display

import (
	"encoding/json"
)

// MarshalJSON marshals v with indentation. Compact output is for the
// wire; the CLI always prints for reading.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
