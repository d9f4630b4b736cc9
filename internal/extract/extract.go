// Package extract turns raw study material (pasted text, uploaded
// files, web pages) into plain text suitable for card generation.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mahiatlinux/FlashCardMasher/internal/config"
)

// Extractor dispatches to the per-format extraction routines.
type Extractor struct {
	logger       *slog.Logger
	maxFileBytes int64
	client       *http.Client
}

func New(cfg config.ExtractConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		logger:       logger,
		maxFileBytes: cfg.MaxFileBytes,
		client: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		},
	}
}

// FromText validates pasted text as-is.
func (e *Extractor) FromText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResult
	}
	if int64(len(text)) > e.maxFileBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(text))
	}
	return text, nil
}

// FromFile extracts plain text from an uploaded file, dispatching on
// the filename extension. PDF, DOCX, and plain-text formats are
// supported.
func (e *Extractor) FromFile(filename string, data []byte) (string, error) {
	if int64(len(data)) > e.maxFileBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), e.maxFileBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md", ".markdown", ".text":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyResult, filename)
	}

	e.logger.Debug("Extracted file content",
		"filename", filename,
		"input_bytes", len(data),
		"text_chars", len(text))
	return text, nil
}

// FromURL fetches a page and extracts its readable text. HTML pages
// are stripped to visible text; any other textual content type is
// returned verbatim.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, rawURL, resp.StatusCode)
	}

	// Read one byte past the limit so oversized bodies are detected.
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(body)) > e.maxFileBytes {
		return "", fmt.Errorf("%w: response body over %d bytes", ErrTooLarge, e.maxFileBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var text string
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		text, err = extractHTML(body)
		if err != nil {
			return "", err
		}
	case strings.HasPrefix(mediaType, "text/"), mediaType == "":
		text = string(body)
	case mediaType == "application/pdf":
		text, err = extractPDF(body)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedType, mediaType)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyResult, rawURL)
	}

	e.logger.Debug("Extracted URL content",
		"url", rawURL,
		"content_type", mediaType,
		"text_chars", len(text))
	return text, nil
}
