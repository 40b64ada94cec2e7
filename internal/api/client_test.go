// ABOUTME: Tests for the RAG API client using httptest servers.
// ABOUTME: Covers request shapes, decoding, non-2xx handling, and upload limits.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/asksee/internal/models"
)

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://example.com/api/")
	assert.Equal(t, "http://example.com/api", c.URL())
}

func TestNewClientDefaultURL(t *testing.T) {
	c := NewClient("  ")
	assert.Equal(t, DefaultAPIURL, c.URL())
}

func TestIngestSendsArrayBody(t *testing.T) {
	var got []models.KnowledgeItem
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ingest", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"added_chunks": 3}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	res, err := c.Ingest(context.Background(), []models.KnowledgeItem{{Text: "hello", Source: "notes", Title: "Greeting"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.AddedChunks)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, "notes", got[0].Source)
	assert.Equal(t, "Greeting", got[0].Title)
}

func TestIngestRequiresItems(t *testing.T) {
	c := NewClient("http://localhost:1")
	_, err := c.Ingest(context.Background(), nil)
	assert.Error(t, err)
}

func TestIngestNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Ingest(context.Background(), []models.KnowledgeItem{{Text: "x"}})
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(fmt.Errorf("fetch: %w", err)))
	assert.Zero(t, StatusCode(errors.New("dial tcp: refused")))
}

func TestAskSendsQuestionAndK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		var payload askPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "What is X?", payload.Question)
		assert.Equal(t, DefaultTopK, payload.K)
		_, _ = w.Write([]byte(`{"answer":"X is Y","sources":[{"title":"Doc","snippet":"Y"}]}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL).Ask(context.Background(), "What is X?", 0)
	require.NoError(t, err)
	assert.Equal(t, "X is Y", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Doc", res.Sources[0].Label())
}

func TestAskToleratesNonArraySources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"ok","sources":"nope"}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL).Ask(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
	assert.Empty(t, res.Sources)
}

func TestAskInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Ask(context.Background(), "q", 4)
	assert.Error(t, err)
}

func TestEmbeddingsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"items":[{"id":"a","embedding":[1,2,3],"title":"T"}],"total":1,"limit":300,"offset":0}`))
	}))
	defer server.Close()

	page, err := NewClient(server.URL).Embeddings(context.Background(), 300, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []float64{1, 2, 3}, page.Items[0].Embedding)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).Health(context.Background()))
}

func TestHealthUnreachable(t *testing.T) {
	assert.Error(t, NewClient("http://localhost:1").Health(context.Background()))
}

func TestHealthCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewClient(server.URL).Health(ctx))
}

func TestCheckUploadSizeBoundary(t *testing.T) {
	assert.NoError(t, CheckUploadSize(10485760))
	err := CheckUploadSize(10485761)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestIngestFileOversizedMakesNoRequest(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"added_chunks":1}`))
	}))
	defer server.Close()

	up := FileUpload{Name: "big.txt", Size: MaxUploadBytes + 1, Reader: bytes.NewReader(nil)}
	_, err := NewClient(server.URL).IngestFile(context.Background(), up)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestIngestFileAtLimitIsSent(t *testing.T) {
	var received int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest-file", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(32<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer func() { _ = f.Close() }()
		n, _ := io.Copy(io.Discard, f)
		received = n
		assert.Equal(t, "exact.bin", hdr.Filename)
		assert.Equal(t, "upload", r.FormValue("source"))
		assert.Equal(t, "Exact", r.FormValue("title"))
		_, _ = w.Write([]byte(`{"added_chunks":7}`))
	}))
	defer server.Close()

	data := make([]byte, MaxUploadBytes)
	var lastProgress atomic.Int64
	up := FileUpload{
		Name:   "exact.bin",
		Size:   int64(len(data)),
		Reader: bytes.NewReader(data),
		Source: "upload",
		Title:  "Exact",
		OnProgress: func(current, total int64) {
			lastProgress.Store(current)
		},
	}
	res, err := NewClient(server.URL).IngestFile(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, 7, res.AddedChunks)
	assert.Equal(t, MaxUploadBytes, received)
	assert.Greater(t, lastProgress.Load(), MaxUploadBytes)
}

func TestIngestFileUnderstatedSizeIsCaught(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	up := FileUpload{Name: "liar.bin", Size: 10, Reader: bytes.NewReader(make([]byte, MaxUploadBytes+1))}
	_, err := NewClient(server.URL).IngestFile(context.Background(), up)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestOpenFileUpload(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0644))

	up, f, err := OpenFileUpload(small)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "small.txt", up.Name)
	assert.Equal(t, int64(5), up.Size)

	big := filepath.Join(dir, "big.bin")
	fh, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, fh.Truncate(MaxUploadBytes+1))
	require.NoError(t, fh.Close())

	_, _, err = OpenFileUpload(big)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}
