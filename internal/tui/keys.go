// ABOUTME: Key bindings for the asksee terminal UI.
// ABOUTME: Global tab navigation plus per-pane actions, rendered through bubbles/help.
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextTab    key.Binding
	IngestTab  key.Binding
	AskTab     key.Binding
	PlotTab    key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	AddText    key.Binding
	UploadFile key.Binding
	Submit     key.Binding

	ToggleDims     key.Binding
	CycleLimit     key.Binding
	Refresh        key.Binding
	ToggleFallback key.Binding
	NextPoint      key.Binding
	PrevPoint      key.Binding
	RotateLeft     key.Binding
	RotateRight    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextTab:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "next tab")),
		IngestTab:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "ingest")),
		AskTab:     key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "ask")),
		PlotTab:    key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "embeddings")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		AddText:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "add text")),
		UploadFile: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upload file")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),

		ToggleDims:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "2D/3D")),
		CycleLimit:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ToggleFallback: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fallback")),
		NextPoint:      key.NewBinding(key.WithKeys("n", "down"), key.WithHelp("n", "next point")),
		PrevPoint:      key.NewBinding(key.WithKeys("p", "up"), key.WithHelp("p", "prev point")),
		RotateLeft:     key.NewBinding(key.WithKeys("left", "["), key.WithHelp("←/→", "rotate")),
		RotateRight:    key.NewBinding(key.WithKeys("right", "]")),
	}
}

func (k keyMap) ingestHelp() []key.Binding {
	return []key.Binding{k.NextField, k.AddText, k.UploadFile, k.NextTab, k.Quit}
}

func (k keyMap) askHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextTab, k.Quit}
}

func (k keyMap) plotHelp() []key.Binding {
	return []key.Binding{k.ToggleDims, k.CycleLimit, k.Refresh, k.ToggleFallback, k.NextPoint, k.PrevPoint, k.RotateLeft, k.NextTab, k.Quit}
}
