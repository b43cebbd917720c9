package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/worthit/internal/brain"
	"github.com/abelbrown/worthit/internal/coord"
	"github.com/abelbrown/worthit/internal/feeds"
	"github.com/abelbrown/worthit/internal/ui"
)

// renderWidth is the card width for headless output.
const renderWidth = 100

type cardJSON struct {
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Source    string   `json:"source"`
	Image     string   `json:"image,omitempty"`
	Published string   `json:"published,omitempty"`
	Score     int      `json:"score"`
	TitleCN   string   `json:"title_cn"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status"`
	Reason    string   `json:"reason,omitempty"`
}

type scanJSON struct {
	RunID  string     `json:"run_id"`
	Topic  string     `json:"topic"`
	Engine string     `json:"engine"`
	TookMs int64      `json:"took_ms"`
	Cards  []cardJSON `json:"cards"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan <news|film|gear>",
		Short: "Fetch one topic's feeds and analyze every entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			topic, err := feeds.ParseTopic(args[0])
			if err != nil {
				return err
			}
			if err := ctx.startLogging(); err != nil {
				return err
			}
			co, err := ctx.coordinator()
			if err != nil {
				return err
			}

			engine := co.Primary()
			if strings.TrimSpace(engineFlag) != "" {
				engine, err = brain.ParseEngineName(engineFlag)
				if err != nil {
					return err
				}
			}

			errOut := cmd.ErrOrStderr()
			res, err := co.Scan(cmd.Context(), topic, engine, func(done, total int, current string) {
				if current == "" {
					return
				}
				fmt.Fprintf(errOut, "[%d/%d] %s\n", done+1, total, runewidth.Truncate(current, 70, "…"))
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, toScanJSON(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderCards(res, renderWidth))
			return nil
		},
	}

	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine for analysis (DeepSeek or Gemini); defaults to the configured engine")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print cards as JSON")
	return cmd
}

func toScanJSON(res coord.ScanResult) scanJSON {
	out := scanJSON{
		RunID:  res.RunID,
		Topic:  string(res.Topic),
		Engine: string(res.Engine),
		TookMs: res.Took.Milliseconds(),
		Cards:  make([]cardJSON, 0, len(res.Cards)),
	}
	for _, c := range res.Cards {
		card := cardJSON{
			Title:   c.Item.Title,
			Link:    c.Item.Link,
			Source:  c.Item.Source,
			Score:   c.Result.Score,
			TitleCN: c.Result.TitleCN,
			Summary: c.Result.Summary,
			Tags:    c.Result.Tags,
			Status:  string(c.Result.Status),
			Reason:  c.Result.Reason,
		}
		if res.Topic.ShowsImage() {
			card.Image = c.Item.Image
		}
		if !c.Item.Published.IsZero() {
			card.Published = c.Item.Published.Format(time.RFC3339)
		}
		out.Cards = append(out.Cards, card)
	}
	return out
}
