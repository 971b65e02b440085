package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/orderbot/internal/version"
)

// NewRootCmd builds the orderbot command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "orderbot",
		Short:   "orderbot - group orders tracked in chat threads",
		Version: version.String(),
		Long: `orderbot tracks group orders inside Discord threads. Each thread holds at
most one order; the bot keeps a pinned status message in the thread up to date.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(ConfigFlag, "", "Path to the YAML config file (default ~/.orderbot/config.yaml)")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(OrderCmd())
	rootCmd.AddCommand(ProductsCmd())
	rootCmd.AddCommand(ConfigCmd())
	rootCmd.AddCommand(VersionCmd())

	// Developer tools
	rootCmd.AddCommand(DevCmd())

	return rootCmd
}
