// ABOUTME: Root Cobra command and global flags for the asksee CLI.
// ABOUTME: Sets up lifecycle hooks for config loading, logging and the API client.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/config"
	"github.com/2389-research/asksee/internal/logging"
)

var globalConfig *config.Config
var globalLogger *zap.Logger
var globalClient *api.Client

var flagAPIURL string

var rootCmd = &cobra.Command{
	Use:   "asksee",
	Short: "Ask your knowledge base and see its embeddings",
	Long: `
 █████╗ ███████╗██╗  ██╗    ██╗    ███████╗███████╗███████╗
██╔══██╗██╔════╝██║ ██╔╝    ██║    ██╔════╝██╔════╝██╔════╝
███████║███████╗█████╔╝  ████████╗ ███████╗█████╗  █████╗
██╔══██║╚════██║██╔═██╗  ██╔═██╔═╝ ╚════██║██╔══╝  ██╔══╝
██║  ██║███████║██║  ██╗ ██████║   ███████║███████╗███████╗
╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝ ╚═════╝   ╚══════╝╚══════╝╚══════╝

Add text and files to a retrieval-augmented knowledge API, ask it
questions with cited sources, and look at the stored chunk embeddings
projected to 2D or 3D.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagAPIURL != "" {
			cfg.API.URL = flagAPIURL
		}
		globalConfig = cfg

		opts := logging.Options{Level: cfg.Log.Level}
		// The terminal UI owns the screen, so its diagnostics go to a file.
		if cmd.Name() == "ui" {
			path, err := cfg.LogPath()
			if err != nil {
				return fmt.Errorf("failed to resolve log path: %w", err)
			}
			opts.File = path
		}
		logger, err := logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		globalLogger = logger

		globalClient = api.NewClient(cfg.API.URL,
			api.WithTimeout(cfg.API.Timeout),
			api.WithLogger(logger),
		)
		logger.Debug("client ready", zap.String("api_url", globalClient.URL()))

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalLogger != nil {
			_ = globalLogger.Sync()
			globalLogger = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Knowledge API base URL (overrides config and ASKSEE_API_URL)")
}
