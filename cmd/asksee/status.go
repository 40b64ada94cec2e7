// ABOUTME: Cobra command reporting whether the knowledge API is reachable.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the knowledge API",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Printf("API:    %s\n", globalClient.URL())
	if err := globalClient.Health(ctx); err != nil {
		fmt.Println("Status: unreachable")
		return err
	}
	fmt.Println("Status: ok")
	return nil
}
