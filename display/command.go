package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether cmd should print JSON: an explicit
// --json flag wins, then the root's persistent --json, then the
// CROSSVIEW_JSON environment variable
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return envJSON()
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}

	if f := cmd.Root().PersistentFlags().Lookup("json"); f != nil {
		if on, _ := cmd.Root().PersistentFlags().GetBool("json"); on {
			return true
		}
	}

	return envJSON()
}

func envJSON() bool {
	switch os.Getenv("CROSSVIEW_JSON") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// OutputJSON marshals v and writes it to w followed by a newline
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
