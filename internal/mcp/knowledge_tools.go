// ABOUTME: MCP tool implementations for adding knowledge and asking questions.
// ABOUTME: Registers ingest_text, ingest_file, and ask tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/session"
)

func (s *Server) registerKnowledgeTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "ingest_text",
		Description: "Add text to the knowledge base, or a URL for the server to fetch when text is empty. It is chunked and embedded server-side.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"text": {"type": "string", "description": "The text to ingest. May be empty when url is set."},
				"source": {"type": "string", "description": "Where the text came from (optional)"},
				"title": {"type": "string", "description": "A short title (optional)"},
				"url": {"type": "string", "description": "A page to fetch and ingest when text is empty"}
			}
		}`),
	}, s.handleIngestText)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "ingest_file",
		Description: "Upload a local file (10MB max) to the knowledge base.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Path to the file to upload.", "minLength": 1},
				"source": {"type": "string", "description": "Source label (optional)"},
				"title": {"type": "string", "description": "Title (optional)"}
			},
			"required": ["path"]
		}`),
	}, s.handleIngestFile)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the knowledge base, with cited sources.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"question": {"type": "string", "description": "The question to ask.", "minLength": 1},
				"k": {"type": "number", "description": "Number of chunks to retrieve (default 4)"}
			},
			"required": ["question"]
		}`),
	}, s.handleAsk)
}

func (s *Server) handleIngestText(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args models.KnowledgeItem
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if !args.HasContent() {
		return toolError("text or url is required"), nil
	}

	res, err := s.api.Ingest(ctx, []models.KnowledgeItem{args})
	if err != nil {
		return toolError("%s %v", session.StatusIngestFailed, err), nil
	}
	return toolText(session.AddedStatus(res)), nil
}

func (s *Server) handleIngestFile(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Path   string `json:"path"`
		Source string `json:"source"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Path == "" {
		return toolError("path is required"), nil
	}

	up, f, err := api.OpenFileUpload(args.Path)
	if errors.Is(err, api.ErrFileTooLarge) {
		return toolError(session.StatusFileTooLarge), nil
	}
	if err != nil {
		return toolError("%s %v", session.StatusUploadFailed, err), nil
	}
	defer f.Close()

	up.Source = args.Source
	up.Title = args.Title

	res, err := s.api.IngestFile(ctx, *up)
	if err != nil {
		status := session.UploadStatus(nil, err)
		if status == session.StatusFileTooLarge {
			return toolError("%s", status), nil
		}
		return toolError("%s %v", status, err), nil
	}
	return toolText(fmt.Sprintf("%s (%s)", session.AddedStatus(res), up.Name)), nil
}

func (s *Server) handleAsk(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Question string `json:"question"`
		K        int    `json:"k"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if strings.TrimSpace(args.Question) == "" {
		return toolError("question is required"), nil
	}

	res, err := s.api.Ask(ctx, args.Question, args.K)
	if err != nil {
		return toolError("%s %v", session.AnswerFailed, err), nil
	}

	var sb strings.Builder
	sb.WriteString(session.AnswerText(res, nil))
	if sources := session.Citations(res, nil); len(sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, src := range sources {
			sb.WriteString(session.CitationLine(src))
			sb.WriteString("\n")
		}
	}
	return toolText(strings.TrimRight(sb.String(), "\n")), nil
}
