// ABOUTME: Ingest pane: free text with metadata, or a local file upload.
// ABOUTME: Oversized files are rejected here, before any request is made.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/asksee/internal/models"
)

type ingestField int

const (
	fieldText ingestField = iota
	fieldSource
	fieldTitle
	fieldURL
	fieldFile
	fieldCount
)

var ingestLabels = [fieldCount]string{"Text", "Source", "Title", "URL", "File"}

type ingestPane struct {
	text   textarea.Model
	inputs [fieldCount]textinput.Model
	focus  ingestField
	status string
}

func newIngestPane() ingestPane {
	ta := textarea.New()
	ta.Placeholder = "Paste text to add to the knowledge base..."
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.Focus()

	p := ingestPane{text: ta}
	placeholders := [fieldCount]string{"", "optional", "optional", "optional", "path/to/file.pdf"}
	for f := fieldSource; f < fieldCount; f++ {
		in := textinput.New()
		in.Placeholder = placeholders[f]
		in.Width = 50
		p.inputs[f] = in
	}
	return p
}

func (p *ingestPane) setWidth(width int) {
	w := width - 6
	if w < 20 {
		w = 20
	}
	p.text.SetWidth(w)
	for f := fieldSource; f < fieldCount; f++ {
		p.inputs[f].Width = w - 10
	}
}

func (p *ingestPane) blur() {
	p.text.Blur()
	for i := fieldSource; i < fieldCount; i++ {
		p.inputs[i].Blur()
	}
}

func (p *ingestPane) focusField(f ingestField) tea.Cmd {
	p.blur()
	p.focus = (f + fieldCount) % fieldCount
	if p.focus == fieldText {
		return p.text.Focus()
	}
	return p.inputs[p.focus].Focus()
}

func (p *ingestPane) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if p.focus == fieldText {
		p.text, cmd = p.text.Update(msg)
		return cmd
	}
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

func (p ingestPane) item() models.KnowledgeItem {
	return models.KnowledgeItem{
		Text:   p.text.Value(),
		Source: strings.TrimSpace(p.inputs[fieldSource].Value()),
		Title:  strings.TrimSpace(p.inputs[fieldTitle].Value()),
		URL:    strings.TrimSpace(p.inputs[fieldURL].Value()),
	}
}

func (p ingestPane) filePath() string {
	return strings.TrimSpace(p.inputs[fieldFile].Value())
}

func (p ingestPane) view() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Add text"))
	b.WriteString("\n")
	b.WriteString(p.text.View())
	b.WriteString("\n")
	for f := fieldSource; f < fieldCount; f++ {
		if f == fieldFile {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("Or upload a file (10MB max)"))
			b.WriteString("\n")
		}
		b.WriteString(promptStyle.Render(padLabel(ingestLabels[f])))
		b.WriteString(p.inputs[f].View())
		b.WriteString("\n")
	}
	if p.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle(p.status).Render(p.status))
		b.WriteString("\n")
	}
	return b.String()
}

func padLabel(s string) string {
	return s + ":" + strings.Repeat(" ", 8-len(s))
}
