// ABOUTME: Main asksee terminal UI: Ingest, Ask and Embeddings tabs over one API client.
// ABOUTME: Ingest, upload and ask share a busy gate; submissions while busy are ignored.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/config"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/session"
	"github.com/2389-research/asksee/internal/viz"
)

// Backend is the knowledge API the UI talks to.
type Backend interface {
	Ingest(ctx context.Context, items []models.KnowledgeItem) (*models.IngestResult, error)
	IngestFile(ctx context.Context, up api.FileUpload) (*models.IngestResult, error)
	Ask(ctx context.Context, question string, k int) (*models.AnswerResult, error)
	Embeddings(ctx context.Context, limit, offset int) (*models.EmbeddingPage, error)
}

// Tab identifies a top-level pane.
type Tab int

const (
	TabIngest Tab = iota
	TabAsk
	TabEmbeddings
	tabCount
)

var tabNames = [tabCount]string{"Ingest", "Ask", "Embeddings"}

// AppOptions configures NewApp.
type AppOptions struct {
	Dims          int
	Limit         int
	TopK          int
	ForceFallback bool
	Logger        *zap.Logger
}

// ingestDoneMsg carries the result of a text ingestion or file upload.
type ingestDoneMsg struct {
	res    *models.IngestResult
	err    error
	upload bool
}

// answerMsg carries the result of a question.
type answerMsg struct {
	res *models.AnswerResult
	err error
}

// App is the bubbletea model for `asksee ui`.
type App struct {
	backend Backend
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	keys    keyMap
	help    help.Model
	topK    int

	tab    Tab
	gate   session.Gate
	ingest ingestPane
	ask    askPane
	emb    embeddingsPane

	width  int
	height int
}

// NewApp creates the UI model.
func NewApp(backend Backend, opts AppOptions) App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = api.DefaultTopK
	}
	ctx, cancel := context.WithCancel(context.Background())
	return App{
		backend: backend,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		keys:    defaultKeys(),
		help:    help.New(),
		topK:    topK,
		ingest:  newIngestPane(),
		ask:     newAskPane(),
		emb:     newEmbeddingsPane(opts.Dims, opts.Limit, opts.ForceFallback),
		width:   80,
		height:  30,
	}
}

// Init implements tea.Model.
func (m App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, func() tea.Msg { return fetchEmbeddingsMsg{} })
}

// Update implements tea.Model.
func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ingest.setWidth(msg.Width)
		m.ask.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			cmd := m.switchTab((m.tab + 1) % tabCount)
			return m, cmd
		case key.Matches(msg, m.keys.IngestTab):
			cmd := m.switchTab(TabIngest)
			return m, cmd
		case key.Matches(msg, m.keys.AskTab):
			cmd := m.switchTab(TabAsk)
			return m, cmd
		case key.Matches(msg, m.keys.PlotTab):
			cmd := m.switchTab(TabEmbeddings)
			return m, cmd
		}
		switch m.tab {
		case TabIngest:
			cmd := m.updateIngest(msg)
			return m, cmd
		case TabAsk:
			cmd := m.updateAsk(msg)
			return m, cmd
		case TabEmbeddings:
			cmd := m.updateEmbeddings(msg)
			return m, cmd
		}

	case ingestDoneMsg:
		m.gate.Finish(msg.err)
		if msg.upload {
			m.ingest.status = session.UploadStatus(msg.res, msg.err)
		} else {
			m.ingest.status = session.IngestStatus(msg.res, msg.err)
		}
		if msg.err != nil {
			m.logger.Warn("ingest failed", zap.Bool("upload", msg.upload), zap.Error(msg.err))
			return m, nil
		}
		if msg.upload {
			m.ingest.inputs[fieldFile].SetValue("")
		} else {
			m.ingest.text.Reset()
			m.ingest.inputs[fieldURL].SetValue("")
		}
		return m, nil

	case answerMsg:
		m.gate.Finish(msg.err)
		if msg.err != nil {
			m.logger.Warn("ask failed", zap.Error(msg.err))
		}
		m.ask.setAnswer(msg.res, msg.err)
		return m, nil

	case fetchEmbeddingsMsg:
		cmd := m.emb.startFetch(m.ctx, m.backend)
		return m, cmd

	case embeddingsMsg:
		if !m.emb.apply(msg) {
			m.logger.Debug("discarding stale embeddings response", zap.Int("seq", msg.seq), zap.Int("latest", m.emb.seq))
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("embeddings fetch failed", zap.Error(msg.err))
		}
		return m, nil
	}

	// Blink and other input housekeeping goes to the focused widget.
	var cmd tea.Cmd
	switch m.tab {
	case TabIngest:
		cmd = m.ingest.update(msg)
	case TabAsk:
		cmd = m.ask.update(msg)
	}
	return m, cmd
}

func (m *App) switchTab(tab Tab) tea.Cmd {
	m.tab = tab
	switch tab {
	case TabIngest:
		m.ask.input.Blur()
		return m.ingest.focusField(m.ingest.focus)
	case TabAsk:
		m.ingest.blur()
		return m.ask.input.Focus()
	default:
		m.ingest.blur()
		m.ask.input.Blur()
		return nil
	}
}

func (m *App) updateIngest(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NextField):
		return m.ingest.focusField(m.ingest.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m.ingest.focusField(m.ingest.focus - 1)
	case key.Matches(msg, m.keys.AddText):
		return m.submitText()
	case key.Matches(msg, m.keys.UploadFile):
		return m.submitFile()
	}
	return m.ingest.update(msg)
}

func (m *App) updateAsk(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Submit) {
		return m.submitQuestion()
	}
	return m.ask.update(msg)
}

func (m *App) updateEmbeddings(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleDims):
		m.emb.toggleDims()
	case key.Matches(msg, m.keys.CycleLimit):
		m.emb.cycleLimit()
		return m.emb.startFetch(m.ctx, m.backend)
	case key.Matches(msg, m.keys.Refresh):
		return m.emb.startFetch(m.ctx, m.backend)
	case key.Matches(msg, m.keys.ToggleFallback):
		m.emb.forceFallback = !m.emb.forceFallback
	case key.Matches(msg, m.keys.NextPoint):
		m.emb.moveCursor(1)
	case key.Matches(msg, m.keys.PrevPoint):
		m.emb.moveCursor(-1)
	case key.Matches(msg, m.keys.RotateLeft):
		m.emb.yaw -= rotateStep
	case key.Matches(msg, m.keys.RotateRight):
		m.emb.yaw += rotateStep
	}
	return nil
}

func (m *App) submitText() tea.Cmd {
	item := m.ingest.item()
	if !item.HasContent() {
		return nil
	}
	if !m.gate.Begin() {
		return nil
	}
	m.ingest.status = session.StatusAdding
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		res, err := backend.Ingest(ctx, []models.KnowledgeItem{item})
		return ingestDoneMsg{res: res, err: err}
	}
}

func (m *App) submitFile() tea.Cmd {
	path := m.ingest.filePath()
	if path == "" || m.gate.Busy() {
		return nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		m.ingest.status = session.StatusUploadFailed
		return nil
	}

	up, f, err := api.OpenFileUpload(expanded)
	if err != nil {
		if !errors.Is(err, api.ErrFileTooLarge) {
			m.logger.Warn("cannot open upload", zap.String("path", expanded), zap.Error(err))
		}
		m.ingest.status = session.UploadStatus(nil, err)
		return nil
	}
	if !m.gate.Begin() {
		_ = f.Close()
		return nil
	}

	item := m.ingest.item()
	up.Source = item.Source
	up.Title = item.Title
	m.ingest.status = session.StatusUploading
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		defer f.Close()
		res, err := backend.IngestFile(ctx, *up)
		return ingestDoneMsg{res: res, err: err, upload: true}
	}
}

func (m *App) submitQuestion() tea.Cmd {
	q := m.ask.question()
	if q == "" {
		return nil
	}
	if !m.gate.Begin() {
		return nil
	}
	m.ask.setThinking()
	ctx, backend, k := m.ctx, m.backend, m.topK
	return func() tea.Msg {
		res, err := backend.Ask(ctx, q, k)
		return answerMsg{res: res, err: err}
	}
}

// View implements tea.Model.
func (m App) View() string {
	var b strings.Builder

	b.WriteString(brandStyle.Render(" ASK & SEE "))
	b.WriteString(" ")
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		style := tabStyle
		if t == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(tabNames[t]))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	switch m.gate.State() {
	case session.InFlight:
		b.WriteString(noticeStyle.Render("  working..."))
	case session.Failed:
		b.WriteString(errorStyle.Render("  last request failed"))
	}
	b.WriteString("\n\n")

	var bindings []key.Binding
	switch m.tab {
	case TabIngest:
		b.WriteString(m.ingest.view())
		bindings = m.keys.ingestHelp()
	case TabAsk:
		b.WriteString(m.ask.view())
		bindings = m.keys.askHelp()
	case TabEmbeddings:
		b.WriteString(viz.Guard(
			func() string { return m.emb.view(m.width, m.height, m.logger) },
			func(err error) string {
				m.logger.Error("embeddings view failed", zap.Error(err))
				return errorStyle.Render(VisualizationFailed + ": " + err.Error())
			},
		))
		bindings = m.keys.plotHelp()
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case session.StatusIngestFailed, session.StatusUploadFailed, session.StatusFileTooLarge:
		return errorStyle
	case session.StatusAdding, session.StatusUploading:
		return noticeStyle
	default:
		return successStyle
	}
}
