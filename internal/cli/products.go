package cli

import (
	"github.com/spf13/cobra"
)

// ProductsCmd returns the command that searches the product dictionary.
func ProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products [partial]",
		Short: "Search the product dictionary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			partial := ""
			if len(args) == 1 {
				partial = args[0]
			}
			return a.OrderAdapterWithOutput(cmd.OutOrStdout()).Products(partial)
		},
	}
}
