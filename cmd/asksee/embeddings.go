// ABOUTME: CLI command that projects stored embeddings and plots them.
// ABOUTME: Prints a braille scatter to the terminal or writes an interactive plotly page.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/2389-research/asksee/internal/config"
	"github.com/2389-research/asksee/internal/embeddings"
	"github.com/2389-research/asksee/internal/projector"
	"github.com/2389-research/asksee/internal/session"
	"github.com/2389-research/asksee/internal/viz"
)

var embeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Plot stored chunk embeddings",
	Long: `Fetch stored chunk embeddings, project them onto their first principal
components and plot them. Use --html to write an interactive plotly page.`,
	Example: `  asksee embeddings --dims 3
  asksee embeddings --limit 800 --html embeddings.html
  asksee embeddings --neighbors 3`,
	RunE: runEmbeddings,
}

// Flags
var (
	embLimit     int
	embOffset    int
	embDims      int
	embHTML      string
	embFallback  bool
	embNeighbors int
)

func init() {
	rootCmd.AddCommand(embeddingsCmd)

	embeddingsCmd.Flags().IntVar(&embLimit, "limit", config.DefaultLimit, "Maximum number of embeddings to fetch")
	embeddingsCmd.Flags().IntVar(&embOffset, "offset", 0, "Number of embeddings to skip")
	embeddingsCmd.Flags().IntVar(&embDims, "dims", config.DefaultDims, "Projection dimensions (2 or 3)")
	embeddingsCmd.Flags().StringVar(&embHTML, "html", "", "Write an interactive plotly page to this file")
	embeddingsCmd.Flags().BoolVar(&embFallback, "fallback", false, "Use the minimal canvas renderer")
	embeddingsCmd.Flags().IntVar(&embNeighbors, "neighbors", 0, "List this many nearest neighbours per point")
}

func runEmbeddings(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("limit") {
		embLimit = globalConfig.Viz.Limit
	}
	if !cmd.Flags().Changed("dims") {
		embDims = globalConfig.Viz.Dims
	}
	if embDims != 2 && embDims != 3 {
		return fmt.Errorf("--dims must be 2 or 3, got %d", embDims)
	}
	if embLimit <= 0 || embOffset < 0 {
		return fmt.Errorf("--limit must be positive and --offset non-negative")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, session.StatusLoading)
	page, err := globalClient.Embeddings(ctx, embLimit, embOffset)
	if err != nil {
		return fmt.Errorf("%s: %s", session.EmbeddingsFailed, session.EmbeddingsError(err))
	}

	proj, err := projector.Project(page.Items, embDims)
	if errors.Is(err, projector.ErrNeedMoreData) {
		fmt.Println(session.NeedMoreData)
		return nil
	}
	if err != nil {
		return err
	}

	if embHTML != "" {
		return writeHTML(embHTML, proj)
	}

	width, height := plotSize()
	res := viz.Boundary{
		Primary:       viz.NewBraille(),
		Fallback:      viz.Canvas{Selected: -1},
		ForceFallback: embFallback,
		Logger:        globalLogger,
	}.Render(proj, width, height)
	if res.Notice != "" {
		fmt.Println(res.Notice)
	}
	fmt.Println(res.View)
	fmt.Println(viz.AxesLabel(proj))
	fmt.Printf("%s   points: %d\n", proj.Summary(), proj.Len())

	if embNeighbors > 0 {
		fmt.Println()
		for i, it := range proj.Items {
			fmt.Printf("%d. %s\n", i+1, itemName(it.Label(), it.ID))
			for _, n := range embeddings.Nearest(proj.Items, i, embNeighbors) {
				fmt.Printf("   ~ %s (%.3f)\n", itemName(n.Item.Label(), n.Item.ID), n.Score)
			}
		}
	}
	return nil
}

func writeHTML(path string, proj *projector.Projection) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	fig, err := viz.NewFigure(proj)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := viz.WriteHTML(f, fig); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%s)\n", path, proj.Summary())
	return nil
}

// plotSize fits the plot to the terminal, leaving room for the legend.
func plotSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return 72, 20
	}
	if height > 8 {
		height -= 6
	}
	return width, height
}

func itemName(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
