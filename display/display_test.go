package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() (*cobra.Command, *cobra.Command) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	child.Flags().BoolP("json", "j", false, "")
	root.AddCommand(child)
	return root, child
}

func TestShouldOutputJSON(t *testing.T) {
	t.Setenv("CROSSVIEW_JSON", "")

	tests := []struct {
		name string
		args []string
		env  string
		want bool
	}{
		{"default", []string{"child"}, "", false},
		{"local flag", []string{"child", "--json"}, "", true},
		{"local flag off beats env", []string{"child", "--json=false"}, "1", false},
		{"env", []string{"child"}, "true", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CROSSVIEW_JSON", tt.env)
			root, child := newCmd()
			root.SetArgs(tt.args)
			require.NoError(t, root.Execute())
			assert.Equal(t, tt.want, ShouldOutputJSON(child))
		})
	}

	assert.False(t, ShouldOutputJSON(nil))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"records": 3}))
	assert.Equal(t, "{\n  \"records\": 3\n}\n", buf.String())
}
