package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <[catalog.][schema.]procedure>",
		Short: "Print the parameters of a stored procedure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			params, err := e.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tDIRECTION\tTYPE")
			for _, entry := range params.Entries() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", entry.Position+1, entry.Name, entry.Direction, entry.Type)
			}
			return w.Flush()
		},
	}
}
