// ABOUTME: Embeddings pane: fetches stored vectors, projects them and plots the result.
// ABOUTME: Every fetch carries a sequence number so only the latest response is applied.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/embeddings"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/projector"
	"github.com/2389-research/asksee/internal/session"
	"github.com/2389-research/asksee/internal/viz"
)

// Limits offered by the limit selector.
var Limits = []int{200, 300, 500, 800}

// VisualizationFailed heads the view shown when the plot pane itself faults.
const VisualizationFailed = "Embeddings Visualization failed to load"

const (
	rotateStep   = math.Pi / 12
	neighborShow = 3
)

// fetchEmbeddingsMsg asks the app to start a new fetch.
type fetchEmbeddingsMsg struct{}

// embeddingsMsg carries the result of fetch number seq.
type embeddingsMsg struct {
	seq  int
	page *models.EmbeddingPage
	err  error
}

type embeddingsPane struct {
	dims          int
	limitIdx      int
	seq           int
	loading       bool
	errText       string
	items         []models.EmbeddingItem
	proj          *projector.Projection
	needMore      bool
	cursor        int
	yaw           float64
	forceFallback bool
}

func newEmbeddingsPane(dims, limit int, forceFallback bool) embeddingsPane {
	p := embeddingsPane{
		dims:          projector.NormalizeDims(dims),
		limitIdx:      1,
		yaw:           viz.NewBraille().Yaw,
		forceFallback: forceFallback,
	}
	for i, l := range Limits {
		if l == limit {
			p.limitIdx = i
		}
	}
	return p
}

func (p embeddingsPane) limit() int {
	return Limits[p.limitIdx]
}

// startFetch bumps the sequence number and returns the fetch command.
func (p *embeddingsPane) startFetch(ctx context.Context, backend Backend) tea.Cmd {
	p.seq++
	seq := p.seq
	limit := p.limit()
	p.loading = true
	return func() tea.Msg {
		page, err := backend.Embeddings(ctx, limit, 0)
		return embeddingsMsg{seq: seq, page: page, err: err}
	}
}

// apply stores a fetch result. It reports false when msg is stale.
func (p *embeddingsPane) apply(msg embeddingsMsg) bool {
	if msg.seq != p.seq {
		return false
	}
	p.loading = false
	if msg.err != nil {
		p.errText = session.EmbeddingsError(msg.err)
		p.items = nil
		p.proj = nil
		p.needMore = false
		return true
	}
	p.errText = ""
	p.items = nil
	if msg.page != nil {
		p.items = msg.page.Items
	}
	p.reproject()
	return true
}

func (p *embeddingsPane) reproject() {
	proj, err := projector.Project(p.items, p.dims)
	p.proj = proj
	p.needMore = errors.Is(err, projector.ErrNeedMoreData)
	if err != nil && !p.needMore {
		p.errText = err.Error()
	}
	if proj == nil || p.cursor >= proj.Len() {
		p.cursor = 0
	}
}

func (p *embeddingsPane) toggleDims() {
	if p.dims == 3 {
		p.dims = 2
	} else {
		p.dims = 3
	}
	p.reproject()
}

func (p *embeddingsPane) cycleLimit() {
	p.limitIdx = (p.limitIdx + 1) % len(Limits)
}

func (p *embeddingsPane) moveCursor(delta int) {
	if p.proj == nil || p.proj.Len() == 0 {
		return
	}
	n := p.proj.Len()
	p.cursor = ((p.cursor+delta)%n + n) % n
}

func (p embeddingsPane) view(width, height int, logger *zap.Logger) string {
	var b strings.Builder

	valid := models.CountUsable(p.items)
	b.WriteString(promptStyle.Render(fmt.Sprintf("View: %dD   Limit: %d   points: %d", p.dims, p.limit(), valid)))
	if p.forceFallback {
		b.WriteString(promptStyle.Render("   [fallback]"))
	}
	b.WriteString("\n\n")

	switch {
	case p.loading && p.proj == nil:
		b.WriteString(noticeStyle.Render(session.StatusLoading))
		b.WriteString("\n")
	case p.errText != "":
		b.WriteString(errorStyle.Render(p.errText))
		b.WriteString("\n")
	case p.needMore:
		b.WriteString(noticeStyle.Render(session.NeedMoreData))
		b.WriteString("\n")
	case p.proj != nil:
		b.WriteString(p.plot(width, height, logger))
	}
	return b.String()
}

func (p embeddingsPane) plot(width, height int, logger *zap.Logger) string {
	var b strings.Builder
	plotW := maxInt(width-4, 10)
	plotH := maxInt(height-16, 4)

	res := viz.Boundary{
		Primary:       viz.Braille{Yaw: p.yaw, Pitch: viz.NewBraille().Pitch, Selected: p.cursor},
		Fallback:      viz.Canvas{Selected: p.cursor},
		ForceFallback: p.forceFallback,
		Logger:        logger,
	}.Render(p.proj, plotW, plotH)

	if p.loading {
		b.WriteString(noticeStyle.Render(session.StatusLoading))
		b.WriteString("\n")
	}
	if res.Notice != "" {
		b.WriteString(noticeStyle.Render(res.Notice))
		b.WriteString("\n")
	}
	b.WriteString(plotStyle.Render(res.View))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(viz.AxesLabel(p.proj) + "   " + p.proj.Summary()))
	b.WriteString("\n\n")

	item := p.proj.Items[p.cursor]
	hover := strings.SplitN(projector.HoverText(item), "\n", 2)
	label := hover[0]
	if label == "" {
		label = item.ID
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d/%d %s", p.cursor+1, p.proj.Len(), label)))
	b.WriteString("\n")
	if len(hover) > 1 {
		b.WriteString(truncate(hover[1], plotW))
		b.WriteString("\n")
	}
	for _, n := range embeddings.Nearest(p.proj.Items, p.cursor, neighborShow) {
		name := n.Item.Label()
		if name == "" {
			name = n.Item.ID
		}
		b.WriteString(promptStyle.Render(fmt.Sprintf("  ~ %s (%.3f)", name, n.Score)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
