// ABOUTME: MCP server initialization and configuration for asksee.
// ABOUTME: Exposes ingestion, question answering and embedding projection as agent tools.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/models"
)

// KnowledgeAPI is the subset of the knowledge service the tools call.
type KnowledgeAPI interface {
	Ingest(ctx context.Context, items []models.KnowledgeItem) (*models.IngestResult, error)
	IngestFile(ctx context.Context, up api.FileUpload) (*models.IngestResult, error)
	Ask(ctx context.Context, question string, k int) (*models.AnswerResult, error)
	Embeddings(ctx context.Context, limit, offset int) (*models.EmbeddingPage, error)
}

// Server wraps the MCP server around a knowledge API client.
type Server struct {
	mcp   *gomcp.Server
	api   KnowledgeAPI
	limit int
	dims  int
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithProjectionDefaults sets the limit and dims used when a tool call omits them.
func WithProjectionDefaults(limit, dims int) ServerOption {
	return func(s *Server) {
		if limit > 0 {
			s.limit = limit
		}
		if dims == 2 || dims == 3 {
			s.dims = dims
		}
	}
}

// NewServer creates an MCP server backed by client.
func NewServer(client KnowledgeAPI, opts ...ServerOption) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "asksee",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		api:   client,
		limit: 300,
		dims:  2,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerKnowledgeTools()
	s.registerProjectionTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolText(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}
