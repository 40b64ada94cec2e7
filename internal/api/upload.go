// ABOUTME: Multipart file ingestion against POST /ingest-file.
// ABOUTME: Enforces the 10 MiB upload limit locally before any request is made.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/2389-research/asksee/internal/models"
)

// MaxUploadBytes is the largest file the server accepts.
const MaxUploadBytes int64 = 10 * 1024 * 1024

// ErrFileTooLarge is returned when a file exceeds MaxUploadBytes.
var ErrFileTooLarge = errors.New("file too large (>10MB)")

// CheckUploadSize returns ErrFileTooLarge for sizes above MaxUploadBytes.
func CheckUploadSize(size int64) error {
	if size > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

// ProgressFunc is a callback for reporting upload progress.
type ProgressFunc func(current, total int64)

// FileUpload describes a file to ingest.
type FileUpload struct {
	Name       string
	Size       int64
	Reader     io.Reader
	Source     string
	Title      string
	OnProgress ProgressFunc
}

// OpenFileUpload stats and opens path. The size check happens here so an
// oversized file is never read. The caller must close the returned file.
func OpenFileUpload(path string) (*FileUpload, *os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}
	if err := CheckUploadSize(info.Size()); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &FileUpload{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Reader: f,
	}, f, nil
}

// IngestFile uploads a file to POST /ingest-file.
func (c *Client) IngestFile(ctx context.Context, up FileUpload) (*models.IngestResult, error) {
	if err := CheckUploadSize(up.Size); err != nil {
		return nil, err
	}
	if up.Reader == nil {
		return nil, fmt.Errorf("no file content to upload")
	}

	// Read one byte past the limit so a lying Size cannot slip a large body through.
	content, err := io.ReadAll(io.LimitReader(up.Reader, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := CheckUploadSize(int64(len(content))); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	name := up.Name
	if name == "" {
		name = "upload"
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.WriteField("source", up.Source); err != nil {
		return nil, fmt.Errorf("failed to write source field: %w", err)
	}
	if err := mw.WriteField("title", up.Title); err != nil {
		return nil, fmt.Errorf("failed to write title field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if up.OnProgress != nil {
		body = &progressReader{reader: body, total: total, onProgress: up.OnProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/ingest-file", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var result models.IngestResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	current    int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	if pr.onProgress != nil && n > 0 {
		pr.onProgress(pr.current, pr.total)
	}
	return n, err
}
