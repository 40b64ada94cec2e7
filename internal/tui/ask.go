// ABOUTME: Ask pane: a question input and a scrollable answer with cited sources.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/session"
)

type askPane struct {
	input    textinput.Model
	answer   string
	sources  []models.SourceCitation
	viewport viewport.Model
}

func newAskPane() askPane {
	in := textinput.New()
	in.Placeholder = "Ask a question about your knowledge base"
	in.Width = 60

	return askPane{
		input:    in,
		viewport: viewport.New(70, 12),
	}
}

func (p *askPane) resize(width, height int) {
	p.input.Width = maxInt(width-8, 20)
	p.viewport.Width = maxInt(width-4, 20)
	p.viewport.Height = maxInt(height-10, 4)
	p.refresh()
}

func (p *askPane) question() string {
	return strings.TrimSpace(p.input.Value())
}

func (p *askPane) setThinking() {
	p.answer = session.StatusThinking
	p.sources = nil
	p.refresh()
}

func (p *askPane) setAnswer(res *models.AnswerResult, err error) {
	p.answer = session.AnswerText(res, err)
	p.sources = session.Citations(res, err)
	p.refresh()
}

func (p *askPane) refresh() {
	var b strings.Builder
	b.WriteString(p.answer)
	if len(p.sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Sources"))
		for _, s := range p.sources {
			b.WriteString("\n")
			b.WriteString(session.CitationLine(s))
		}
	}
	p.viewport.SetContent(b.String())
	p.viewport.GotoTop()
}

func (p *askPane) update(msg tea.Msg) tea.Cmd {
	// Letter keys belong to the question; only paging keys scroll the answer.
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return cmd
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p askPane) view() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Question"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	if p.answer != "" {
		b.WriteString(panelStyle.Render(p.viewport.View()))
		b.WriteString("\n")
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
