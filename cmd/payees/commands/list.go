package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
)

// list [--sort field] [--desc]: print all payees.
func listCmd(opts *options) *cobra.Command {
	var (
		sortField string
		desc      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, closeFn, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			result := <-application.Data.GetPayeesAsync(cmd.Context())
			if result.Err != nil {
				return result.Err
			}

			direction := manager.SortAscending
			if desc {
				direction = manager.SortDescending
			}
			return printPayees(cmd.OutOrStdout(), manager.Sorted(result.Payees, sortField, direction))
		},
	}
	cmd.Flags().StringVar(&sortField, "sort", "", "column field to sort by (payeeName, address.city, address.state)")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}

func printPayees(w io.Writer, list []payee.Payee) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	columns := manager.DefaultColumns()
	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\n", columns[0].Label, columns[1].Label, columns[2].Label)
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.PayeeName, p.Address.City, p.Address.State)
	}
	return tw.Flush()
}
