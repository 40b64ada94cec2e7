// ABOUTME: Cobra command for interactive knowledge API setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the API URL.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/asksee/internal/config"
	"github.com/2389-research/asksee/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the knowledge API",
	Long:  "Interactive wizard to set the API URL and default plot view.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagAPIURL != "" {
		cfg.API.URL = flagAPIURL
	}

	model := tui.NewSetupModel(cfg.API.URL, cfg.Viz.Dims)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	cfg.API.URL, cfg.Viz.Dims = final.Result()

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
