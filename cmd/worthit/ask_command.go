package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/worthit/internal/ui"
)

type askJSON struct {
	RunID    string `json:"run_id"`
	Query    string `json:"query"`
	Material string `json:"material"`
	Merged   string `json:"merged"`
	RawA     string `json:"raw_a"`
	RawB     string `json:"raw_b"`
	TookMs   int64  `json:"took_ms"`
}

func newAskCommand(ctx *commandContext) *cobra.Command {
	var raw bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Search the web and fuse both engines' answers into one report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query is empty")
			}
			if err := ctx.startLogging(); err != nil {
				return err
			}
			co, err := ctx.coordinator()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Both engines are working...")
			res := co.Ask(cmd.Context(), query)
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, askJSON{
					RunID:    res.RunID,
					Query:    res.Query,
					Material: res.Material,
					Merged:   res.Fusion.Merged,
					RawA:     res.Fusion.RawA,
					RawB:     res.Fusion.RawB,
					TookMs:   res.Fusion.Took.Milliseconds(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderFusion(res, renderWidth, raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Also print both unmerged reports")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
