// ABOUTME: Local web projector serving the plotly page and projection JSON.
// ABOUTME: chi router with request IDs, zap request logging and panic recovery.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/2389-research/asksee/internal/api"
	"github.com/2389-research/asksee/internal/models"
	"github.com/2389-research/asksee/internal/projector"
	"github.com/2389-research/asksee/internal/session"
	"github.com/2389-research/asksee/internal/viz"
)

// DefaultAddr is where `asksee serve` listens.
const DefaultAddr = "127.0.0.1:8765"

// Limits offered by the page's limit selector.
var Limits = []int{200, 300, 500, 800}

// EmbeddingSource fetches a page of stored embeddings.
type EmbeddingSource interface {
	Embeddings(ctx context.Context, limit, offset int) (*models.EmbeddingPage, error)
}

// Server serves the projector page.
type Server struct {
	source EmbeddingSource
	logger *zap.Logger
	dims   int
	limit  int
}

// NewServer creates a projector server. dims and limit are the page defaults.
func NewServer(source EmbeddingSource, logger *zap.Logger, dims, limit int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 300
	}
	return &Server{
		source: source,
		logger: logger,
		dims:   projector.NormalizeDims(dims),
		limit:  limit,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(Logger(s.logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handlePage)
	r.Get("/api/projection", s.handleProjection)

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("projector listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("projector shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := viz.WritePage(w, viz.PageData{
		Endpoint: "/api/projection",
		Dims:     s.dims,
		Limit:    s.limit,
		Limits:   Limits,
	})
	if err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

type projectionResponse struct {
	Figure  *viz.Figure `json:"figure"`
	Valid   int         `json:"valid"`
	Total   int         `json:"total"`
	Summary string      `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), s.limit)
	if err != nil || limit <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "offset must be a non-negative integer"})
		return
	}
	dims, err := intParam(q.Get("dims"), s.dims)
	if err != nil || (dims != 2 && dims != 3) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "dims must be 2 or 3"})
		return
	}

	page, err := s.source.Embeddings(r.Context(), limit, offset)
	if err != nil {
		s.logger.Warn("embeddings fetch failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, upstreamStatus(err), errorResponse{Error: session.EmbeddingsError(err)})
		return
	}

	proj, err := projector.Project(page.Items, dims)
	if errors.Is(err, projector.ErrNeedMoreData) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: session.NeedMoreData})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	fig, err := viz.NewFigure(proj)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{
		Figure:  fig,
		Valid:   proj.Len(),
		Total:   proj.Total,
		Summary: proj.Summary(),
	})
}

// upstreamStatus maps a failed embeddings fetch to a response status. The API
// rejecting our parameters is a bad request; anything else is a bad gateway.
func upstreamStatus(err error) int {
	if code := api.StatusCode(err); code >= 400 && code < 500 {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
