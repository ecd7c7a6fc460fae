package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/services/payees"
)

// add --name --city --state: create a payee.
func addCmd(opts *options) *cobra.Command {
	var p payee.Payee
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a payee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := payees.Validate(p); err != nil {
				return err
			}
			application, closeFn, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := application.Data.AddPayee(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.PayeeName, "name", "", "payee name")
	cmd.Flags().StringVar(&p.Address.Street, "street", "", "street address")
	cmd.Flags().StringVar(&p.Address.City, "city", "", "city")
	cmd.Flags().StringVar(&p.Address.State, "state", "", "state")
	cmd.Flags().StringVar(&p.Address.Zip, "zip", "", "postal code")
	cmd.Flags().StringVar(&p.Category, "category", "", "category")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
