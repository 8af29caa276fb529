package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X webdesk/internal/commands.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

func addVersion(topLevel *cobra.Command) {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the webdesk version.",
		// no config is needed to print the version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), Version)
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webdesk %s (commit %s, %s)\n", Version, Commit, runtime.Version())
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print just the version number.")

	topLevel.AddCommand(cmd)
}
