package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ordermetrics/internal/config"
)

// ErrTooLarge is wrapped when a source exceeds the configured size limit
var ErrTooLarge = errors.New("file exceeds size limit")

// TransportError reports a failed download. StatusCode is zero when no
// response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error downloading file: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("error downloading file: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Downloader fetches CSV content over HTTP
type Downloader struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	logger    *slog.Logger
}

// NewDownloader creates a downloader bounded by the ingest timeout and size limit
func NewDownloader(cfg config.IngestConfig, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		logger:    logger.With(slog.String("component", "downloader")),
	}
}

// Fetch downloads rawURL in a single GET. It does not retry.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	redacted := RedactURL(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{URL: redacted, Err: errors.New("invalid url")}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &TransportError{URL: redacted, Err: fmt.Errorf("unsupported url scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{URL: redacted, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redacted
		}
		d.logger.WarnContext(ctx, "download request failed",
			slog.String("url", redacted),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, &TransportError{URL: redacted, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.WarnContext(ctx, "download returned error status",
			slog.String("url", redacted),
			slog.Int("status_code", resp.StatusCode))
		return nil, &TransportError{
			URL:        redacted,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := readLimited(resp.Body, d.maxBytes)
	if err != nil {
		return nil, &TransportError{URL: redacted, Err: err}
	}

	d.logger.DebugContext(ctx, "download complete",
		slog.String("url", redacted),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))

	return body, nil
}

// RedactURL drops credentials and the query string, which often carry
// signatures. An unparsable URL redacts to the empty string.
func RedactURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBytes)
	}
	return body, nil
}
