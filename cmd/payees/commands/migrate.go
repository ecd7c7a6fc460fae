package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/payee_manager/internal/app/runtime"
	"github.com/R3E-Network/payee_manager/internal/platform/migrations"
)

// migrate: apply the embedded schema migrations.
func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires the postgres driver (got %q)", opts.cfg.Database.Driver)
			}
			db, err := runtime.OpenDatabase(cmd.Context(), opts.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Apply(cmd.Context(), db.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
