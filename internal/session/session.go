// ABOUTME: Request gating and user-facing status text shared by every surface.
// ABOUTME: Idle -> InFlight -> Idle|Failed; a trigger while in flight is ignored.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/models"
)

// State is the lifecycle of a single user-triggered request.
type State int

const (
	Idle State = iota
	InFlight
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Gate serializes submissions. The zero value is idle.
// It is a value type so it can live inside bubbletea models.
type Gate struct {
	state State
}

// Begin moves to InFlight. It returns false, leaving the gate untouched, when
// a request is already in flight.
func (g *Gate) Begin() bool {
	if g.state == InFlight {
		return false
	}
	g.state = InFlight
	return true
}

// Finish ends the in-flight request.
func (g *Gate) Finish(err error) {
	if err != nil {
		g.state = Failed
		return
	}
	g.state = Idle
}

// Busy reports whether a request is in flight.
func (g Gate) Busy() bool {
	return g.state == InFlight
}

// State returns the current state.
func (g Gate) State() State {
	return g.state
}

// Status text.
const (
	StatusAdding       = "Adding..."
	StatusUploading    = "Uploading..."
	StatusIngestFailed = "Failed to ingest."
	StatusUploadFailed = "Upload failed."
	StatusFileTooLarge = "File too large (>10MB)"
	StatusThinking     = "Thinking..."
	NoAnswer           = "(no answer)"
	AnswerFailed       = "Error fetching answer."
	StatusLoading      = "Loading embeddings..."
	EmbeddingsFailed   = "Failed to load embeddings"
	NeedMoreData       = "Add more text or increase Limit to see the plot (need at least 2 points)."
)

// AddedStatus formats a successful ingestion.
func AddedStatus(res *models.IngestResult) string {
	n := 0
	if res != nil {
		n = res.AddedChunks
	}
	return fmt.Sprintf("Added %d chunks.", n)
}

// IngestStatus maps the outcome of a text ingestion to status text.
func IngestStatus(res *models.IngestResult, err error) string {
	if err != nil {
		return StatusIngestFailed
	}
	return AddedStatus(res)
}

// UploadStatus maps the outcome of a file upload to status text.
func UploadStatus(res *models.IngestResult, err error) string {
	if errors.Is(err, api.ErrFileTooLarge) {
		return StatusFileTooLarge
	}
	if err != nil {
		return StatusUploadFailed
	}
	return AddedStatus(res)
}

// AnswerText maps the outcome of a question to the text shown to the user.
func AnswerText(res *models.AnswerResult, err error) string {
	if err != nil {
		return AnswerFailed
	}
	if res == nil || strings.TrimSpace(res.Answer) == "" {
		return NoAnswer
	}
	return res.Answer
}

// Citations returns the sources of a successful answer, or nil.
func Citations(res *models.AnswerResult, err error) []models.SourceCitation {
	if err != nil || res == nil {
		return nil
	}
	return res.Sources
}

// CitationLine renders a source as "[label] snippet".
func CitationLine(s models.SourceCitation) string {
	return strings.TrimRight(fmt.Sprintf("[%s] %s", s.Label(), s.Snippet), " ")
}

// EmbeddingsError maps a fetch failure to the message shown to the user.
func EmbeddingsError(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return EmbeddingsFailed
}
