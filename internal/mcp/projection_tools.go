// ABOUTME: MCP tool that projects stored embeddings to 2D or 3D with PCA.
// ABOUTME: Returns coordinates as text and can write the interactive plotly page.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/asksee/internal/config"
	"github.com/2389-research/asksee/internal/embeddings"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/projector"
	"github.com/2389-research/asksee/internal/session"
	"github.com/2389-research/asksee/internal/viz"
)

func (s *Server) registerProjectionTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "project_embeddings",
		Description: "Project stored chunk embeddings onto their principal components and list the coordinates.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of embeddings to fetch (default 300)"},
				"offset": {"type": "number", "description": "Number of embeddings to skip (default 0)"},
				"dims": {"type": "number", "description": "2 or 3 (default 2)"},
				"neighbors": {"type": "number", "description": "List this many nearest neighbours for each point (optional)"},
				"html_path": {"type": "string", "description": "Write an interactive plotly page to this path (optional)"}
			}
		}`),
	}, s.handleProjectEmbeddings)
}

func (s *Server) handleProjectEmbeddings(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit     int    `json:"limit"`
		Offset    int    `json:"offset"`
		Dims      int    `json:"dims"`
		Neighbors int    `json:"neighbors"`
		HTMLPath  string `json:"html_path"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError("invalid arguments: %v", err), nil
		}
	}

	if args.Limit <= 0 {
		args.Limit = s.limit
	}
	if args.Offset < 0 {
		args.Offset = 0
	}
	if args.Dims == 0 {
		args.Dims = s.dims
	}

	page, err := s.api.Embeddings(ctx, args.Limit, args.Offset)
	if err != nil {
		return toolError("%s: %s", session.EmbeddingsFailed, session.EmbeddingsError(err)), nil
	}

	proj, err := projector.Project(page.Items, args.Dims)
	if errors.Is(err, projector.ErrNeedMoreData) {
		return toolText(session.NeedMoreData), nil
	}
	if err != nil {
		return toolError("projection failed: %v", err), nil
	}

	var sb strings.Builder
	sb.WriteString(proj.Summary())
	sb.WriteString("\n")
	sb.WriteString(viz.AxesLabel(proj))
	sb.WriteString("\n\n")

	for i, pt := range proj.Points {
		label := pointLabel(proj.Items[i])
		if proj.Dims == 3 {
			fmt.Fprintf(&sb, "%d. %s (%.4f, %.4f, %.4f)\n", i+1, label, pt.X, pt.Y, pt.Z)
		} else {
			fmt.Fprintf(&sb, "%d. %s (%.4f, %.4f)\n", i+1, label, pt.X, pt.Y)
		}
		if args.Neighbors > 0 {
			for _, n := range embeddings.Nearest(proj.Items, i, args.Neighbors) {
				fmt.Fprintf(&sb, "   ~ %s (%.3f)\n", pointLabel(n.Item), n.Score)
			}
		}
	}

	if args.HTMLPath != "" {
		path, err := config.ExpandPath(args.HTMLPath)
		if err != nil {
			return toolError("invalid html_path: %v", err), nil
		}
		if err := writeFigure(path, proj); err != nil {
			return toolError("failed to write page: %v", err), nil
		}
		fmt.Fprintf(&sb, "\nWrote %s\n", path)
	}

	return toolText(strings.TrimRight(sb.String(), "\n")), nil
}

func pointLabel(it models.EmbeddingItem) string {
	if label := it.Label(); label != "" {
		return label
	}
	return it.ID
}

func writeFigure(path string, proj *projector.Projection) error {
	fig, err := viz.NewFigure(proj)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := viz.WriteHTML(f, fig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
