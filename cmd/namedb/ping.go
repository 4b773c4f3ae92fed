package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the configured database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			start := time.Now()
			if err := e.Ping(cmd.Context()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			stats, err := e.PoolStats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok in %s (open=%d in_use=%d idle=%d)\n",
				e.Dialect().Name(), elapsed.Round(time.Millisecond),
				stats.OpenConnections, stats.InUse, stats.Idle)
			return nil
		},
	}
}
