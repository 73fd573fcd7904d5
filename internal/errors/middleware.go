package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ordermetrics/internal/files"
)

// maxLoggedBody caps the request body kept for failed request logs
const maxLoggedBody = 500

// ErrorMiddleware logs failed requests together with a sanitised copy of
// their body and turns panics into problem responses
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var requestBody []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < 1024*1024 {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		start := time.Now()

		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				m.handler.HandlePanic(ww, r, rvr)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < http.StatusBadRequest {
			return
		}

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if body := sanitizeRequestBody(r.Header.Get("Content-Type"), string(requestBody)); body != "" {
			if len(body) > maxLoggedBody {
				body = body[:maxLoggedBody] + "..."
			}
			attrs = append(attrs, slog.String("request_body", body))
		}

		m.logger.LogAttrs(r.Context(), level, "request failed", attrs...)
	})
}

// sensitiveFields are replaced with [REDACTED] in logged request bodies
var sensitiveFields = []string{
	"password", "token", "secret", "api_key", "apiKey", "credit_card",
}

// csvURLField is logged without credentials or query string
const csvURLField = "csv_url"

// sanitizeRequestBody returns the body as it may be logged. Bodies of other
// media types, and bodies that do not parse, are not logged at all.
func sanitizeRequestBody(contentType, body string) string {
	if body == "" {
		return ""
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json":
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			return ""
		}
		for _, field := range sensitiveFields {
			if _, exists := data[field]; exists {
				data[field] = "[REDACTED]"
			}
		}
		if raw, ok := data[csvURLField].(string); ok {
			data[csvURLField] = files.RedactURL(raw)
		}
		sanitized, _ := json.Marshal(data)
		return string(sanitized)

	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(body)
		if err != nil {
			return ""
		}
		for _, field := range sensitiveFields {
			if values.Has(field) {
				values.Set(field, "[REDACTED]")
			}
		}
		if values.Has(csvURLField) {
			values.Set(csvURLField, files.RedactURL(values.Get(csvURLField)))
		}
		return values.Encode()

	case "text/plain":
		return files.RedactURL(strings.TrimSpace(body))

	default:
		return ""
	}
}
