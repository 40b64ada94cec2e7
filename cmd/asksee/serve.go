// ABOUTME: Cobra command serving the local web projector.
// ABOUTME: Renders embeddings with plotly in the browser, with a canvas fallback.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/asksee/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the embeddings projector in a browser",
	Long:  "Start a local web server that plots stored embeddings with plotly.",
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", web.DefaultAddr, "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := web.NewServer(globalClient, globalLogger, globalConfig.Viz.Dims, globalConfig.Viz.Limit)
	fmt.Printf("Projector running at http://%s (API %s)\n", serveAddr, globalClient.URL())
	return server.ListenAndServe(ctx, serveAddr)
}
