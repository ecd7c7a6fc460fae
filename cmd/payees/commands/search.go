package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

// search <query>: print payees whose name, city or state contains query.
func searchCmd(opts *options) *cobra.Command {
	var city, state string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search payees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, closeFn, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			criteria := payee.Criteria{City: city, State: state}
			if len(args) == 1 {
				criteria.Query = strings.TrimSpace(args[0])
			}
			list, err := application.Data.SearchPayees(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return printPayees(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "only payees in this city")
	cmd.Flags().StringVar(&state, "state", "", "only payees in this state")
	return cmd
}
