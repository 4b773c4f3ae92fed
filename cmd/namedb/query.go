package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/engine"
	"github.com/Konsultn-Engineering/namedb/result"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		params    []string
		maxBuffer int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a statement and stream its rows",
		Long: `Run a statement and print its rows tab-separated as they are read. Statements
that produce no rows print their update count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := parseParams(params)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-buffer") {
				a.cfg.LazyMaxBuffer = maxBuffer
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if !database.ReturnsRows(args[0]) {
				n, err := e.Exec(cmd.Context(), args[0], model)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d rows affected\n", n)
				return nil
			}

			c, err := e.Cursor(cmd.Context(), args[0], model)
			if errors.Is(err, engine.ErrNoResultSet) {
				fmt.Fprintln(out, "no rows")
				return nil
			}
			if err != nil {
				return err
			}
			defer c.Close()

			fmt.Fprintln(out, strings.Join(c.Columns(), "\t"))
			rows := 0
			for limit <= 0 || rows < limit {
				row, err := c.GetNext()
				if err != nil {
					if errors.Is(err, result.ErrNoMoreRows) {
						break
					}
					return err
				}
				fmt.Fprintln(out, formatRow(row.Values()))
				rows++
			}
			if c.Truncated() {
				fmt.Fprintf(cmd.ErrOrStderr(), "output truncated at %d rows by max buffer\n", rows)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter value as name=value (repeatable)")
	cmd.Flags().IntVar(&maxBuffer, "max-buffer", 0, "Cursor look-ahead bound; 0 buffers everything")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many rows; 0 prints all")
	return cmd
}

func formatRow(values []any) string {
	cells := make([]string, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
			cells[i] = "NULL"
		case []byte:
			cells[i] = string(v)
		default:
			cells[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(cells, "\t")
}
