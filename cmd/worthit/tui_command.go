package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/worthit/internal/logging"
	"github.com/abelbrown/worthit/internal/ui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, ctx)
		},
	}
}

func runTUI(cmd *cobra.Command, cctx *commandContext) error {
	defer cctx.close()
	if err := cctx.startLogging(); err != nil {
		return err
	}
	co, err := cctx.coordinator()
	if err != nil {
		return err
	}

	// Cancelled on quit so an in-flight scan stops between items.
	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app := ui.NewApp(ui.AppConfig{
		Service: co,
		Ring:    cctx.ring,
		Ctx:     runCtx,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logging.Error("program exited", "error", err)
		return err
	}
	return nil
}
