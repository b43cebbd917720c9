package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/worthit/internal/otel"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var n int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the tail of the event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			events, err := otel.Tail(cfg.EventLogPath(), n)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, events)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No events in %s.\n", cfg.EventLogPath())
				return nil
			}
			for _, e := range events {
				line := fmt.Sprintf("%s  %-5s  %s", e.Time.Format("15:04:05"), e.Level, e.Summary())
				if e.Dur > 0 {
					line += fmt.Sprintf("  (%s)", e.Dur.Round(time.Millisecond))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 50, "Number of events to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print events as JSON")
	return cmd
}
