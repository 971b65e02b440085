package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/orderbot/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}

	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture orders into the configured database",
		Long: `Insert two fixture orders (one open, one completed) into the configured
database. Intended for a throwaway database; the fixture thread keys must not
already exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Confirmation unless --force
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "This will insert fixtures into: %s\n", cfg.Database.Path)
				fmt.Fprint(cmd.OutOrStdout(), "Continue? [y/N] ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if r := strings.TrimSpace(response); r != "y" && r != "Y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %s\n", cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
