package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// OrderCmd returns the order command group.
func OrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect orders",
		Long:  "List and show orders stored in the orderbot database",
	}

	cmd.AddCommand(orderListCmd())
	cmd.AddCommand(orderShowCmd())
	cmd.AddCommand(orderReportCmd())
	return cmd
}

func orderListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.OrderAdapterWithOutput(cmd.OutOrStdout()).List(cmd.Context(), all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed orders")
	return cmd
}

func orderShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [thread-key]",
		Short: "Show the order bound to a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.OrderAdapterWithOutput(cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		},
	}
}

func orderReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [order-id]",
		Short: "Print the status message text for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.OrderAdapterWithOutput(cmd.OutOrStdout()).Report(cmd.Context(), orderID)
		},
	}
}
