// ABOUTME: CLI command for adding text or files to the knowledge base.
// ABOUTME: Expands file globs, rejects oversized files locally, and shows upload progress.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/files"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add text or files to the knowledge base",
	Long: `Add a piece of text (--text), a page for the server to fetch (--url), or
one or more files (--file, repeatable, supports ** globs). Files over 10MB are
rejected before upload.`,
	Example: `  asksee ingest --text "Go channels are typed conduits." --title Channels
  asksee ingest --url https://go.dev/doc/effective_go --source go.dev
  asksee ingest --file 'docs/**/*.md' --source handbook`,
	RunE: runIngest,
}

// Flags
var (
	ingestText   string
	ingestSource string
	ingestTitle  string
	ingestURL    string
	ingestFiles  []string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestText, "text", "", "Text to add")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "Source label")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "Title")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "Page for the server to fetch when --text is empty")
	ingestCmd.Flags().StringArrayVar(&ingestFiles, "file", nil, "File path or glob to upload (repeatable)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	item := models.KnowledgeItem{
		Text:   ingestText,
		Source: ingestSource,
		Title:  ingestTitle,
		URL:    ingestURL,
	}
	if !item.HasContent() && len(ingestFiles) == 0 {
		return fmt.Errorf("nothing to ingest: pass --text, --url or --file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if item.HasContent() {
		res, err := globalClient.Ingest(ctx, []models.KnowledgeItem{item})
		fmt.Println(session.IngestStatus(res, err))
		if err != nil {
			return err
		}
	}

	if len(ingestFiles) == 0 {
		return nil
	}

	candidates, err := files.Expand(ingestFiles)
	if err != nil {
		return err
	}

	failed := 0
	for _, c := range candidates {
		if c.TooLarge {
			fmt.Printf("%s: %s\n", c.Path, session.StatusFileTooLarge)
			failed++
			continue
		}
		res, err := uploadFile(ctx, c.Path)
		fmt.Printf("%s: %s\n", c.Path, session.UploadStatus(res, err))
		if err != nil {
			globalLogger.Warn("upload failed", zap.String("path", c.Path), zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(candidates))
	}
	return nil
}

func uploadFile(ctx context.Context, path string) (*models.IngestResult, error) {
	up, f, err := api.OpenFileUpload(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	up.Source = ingestSource
	up.Title = ingestTitle

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	up.OnProgress = func(current, total int64) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Uploading[reset] "+up.Name),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		_ = bar.Set64(current)
	}

	res, err := globalClient.IngestFile(ctx, *up)

	barMu.Lock()
	if bar != nil && err != nil {
		_ = bar.Clear()
	}
	barMu.Unlock()
	return res, err
}
