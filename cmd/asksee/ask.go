// ABOUTME: CLI command for asking the knowledge base a question.
// ABOUTME: Prints the answer followed by its cited sources.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question",
	Long:  "Ask a question answered from the knowledge base, with cited sources.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var askK int

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVarP(&askK, "k", "k", api.DefaultTopK, "Number of chunks to retrieve")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := globalClient.Ask(ctx, question, askK)
	fmt.Println(session.AnswerText(res, err))
	if err != nil {
		return err
	}

	sources := session.Citations(res, nil)
	if len(sources) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println("Sources:")
	for _, s := range sources {
		fmt.Printf("  %s\n", session.CitationLine(s))
	}
	return nil
}
