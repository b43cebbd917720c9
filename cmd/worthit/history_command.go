package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/worthit/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var fusions bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent journaled analyses or fusion queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path := cfg.JournalPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No journal at %s. Set journal.enabled in the config to record runs.\n", path)
				return nil
			}

			j, err := store.Open(path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			if fusions {
				rows, err := j.RecentFusions(limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderFusionHistory(rows))
				return nil
			}
			rows, err := j.RecentAnalyses(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderAnalysisHistory(rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&fusions, "fusions", false, "Show fusion queries instead of analyses")
	return cmd
}

func renderAnalysisHistory(rows []store.Analysis) string {
	if len(rows) == 0 {
		return "Journal is empty."
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			humanize.Time(r.CreatedAt),
			r.Topic,
			r.Engine,
			strconv.Itoa(r.Score),
			runewidth.Truncate(r.TitleCN, 40, "…"),
			r.Source,
			r.Status,
		})
	}
	return renderTable(
		[]string{"When", "Topic", "Engine", "Score", "Title", "Source", "Status"},
		table,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderFusionHistory(rows []store.Fusion) string {
	if len(rows) == 0 {
		return "Journal is empty."
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			humanize.Time(r.CreatedAt),
			runewidth.Truncate(r.Query, 40, "…"),
			humanize.Comma(int64(len([]rune(r.Merged)))),
			fmt.Sprintf("%.1fs", float64(r.TookMs)/1000),
		})
	}
	return renderTable(
		[]string{"When", "Query", "Chars", "Took"},
		table,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}
