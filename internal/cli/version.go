package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/orderbot/internal/version"
)

// VersionCmd returns the command that prints build information.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
