package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/query"
)

func newCompileCmd(a *app) *cobra.Command {
	var (
		dialectName string
		params      []string
		inline      bool
	)

	cmd := &cobra.Command{
		Use:   "compile <sql>",
		Short: "Show how a SQL template is compiled",
		Long: `Compile a SQL template and print the SQL sent to the driver together with every
parameter occurrence. With --inline the --param values are rendered into the SQL as
literals, for reading only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := dialect.Lookup(dialectName)
			compiler, err := query.NewCompiler(
				query.WithCacheSize(1),
				query.WithPrefixes(a.cfg.ParameterPrefixes),
				query.WithSpringSyntax(a.cfg.SpringSyntax),
				query.WithBackslashEscapes(dialect.BackslashEscapes(d)),
				query.WithLogger(a.logger))
			if err != nil {
				return err
			}
			input, err := compiler.Compile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if inline {
				model, err := parseParams(params)
				if err != nil {
					return err
				}
				expanded, err := input.Expand(model)
				if err != nil {
					return err
				}
				values := expanded.Values()
				fmt.Fprintln(out, input.Render(func(n int) string { return d.RenderValue(values[n-1]) }))
				return nil
			}

			fmt.Fprintln(out, input.Render(d.Placeholder))
			if len(input.Parameters) == 0 {
				if n := input.PlaceholderCount(); n > 0 {
					fmt.Fprintf(out, "\n%d positional parameters\n", n)
				}
				return nil
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tSTART\tEND")
			for i, ref := range input.Parameters {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", i+1, ref.Name, ref.Start, ref.End)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&dialectName, "dialect", "d", "generic", "Placeholder style: generic, postgres, mysql, sqlserver, oracle, sqlite")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter value as name=value (repeatable)")
	cmd.Flags().BoolVar(&inline, "inline", false, "Render parameter values into the SQL")
	return cmd
}
