// ABOUTME: Cobra command launching the interactive terminal UI.
// ABOUTME: Tabs for ingesting, asking, and exploring the embedding projection.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/asksee/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive terminal UI",
	Long: `Open the terminal UI with Ingest, Ask and Embeddings tabs.

Diagnostics are written to the log file (see log.file in the config)
so they never draw over the screen.`,
	RunE: runUI,
}

var uiFallback bool

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().BoolVar(&uiFallback, "fallback", false, "Start with the minimal canvas renderer")
}

func runUI(cmd *cobra.Command, args []string) error {
	app := tui.NewApp(globalClient, tui.AppOptions{
		Dims:          globalConfig.Viz.Dims,
		Limit:         globalConfig.Viz.Limit,
		ForceFallback: uiFallback,
		Logger:        globalLogger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
