package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/exporter"
	appmiddleware "ordermetrics/internal/middleware"
	apiv1 "ordermetrics/pkg/contracts/api/v1"
	"ordermetrics/pkg/contracts/domain"
)

// MetricsHandler serves processing stats and sales metrics of stored uploads
type MetricsHandler struct {
	service        MetricsService
	validator      *appmiddleware.Validator
	queryValidator *appmiddleware.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(service MetricsService, validator *appmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		service:        service,
		validator:      validator,
		queryValidator: appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:         logger.With(slog.String("component", "metrics_handler")),
		errorHandler:   errorHandler,
	}
}

// UploadCtx rejects malformed {file_id} path parameters before the handler runs
func (h *MetricsHandler) UploadCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := apiv1.FileIDRequest{FileID: chi.URLParam(r, "file_id")}
		if err := h.validator.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidFileID)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProcessingStats handles GET /uploads/{file_id}/processing-stats
func (h *MetricsHandler) ProcessingStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ProcessingStats(r.Context(), chi.URLParam(r, "file_id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, summary)
}

// Metrics handles GET /uploads/{file_id}/metrics?groupby=month|year
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	groupBy := domain.GroupBy(r.URL.Query().Get("groupby"))

	report, err := h.service.Metrics(r.Context(), chi.URLParam(r, "file_id"), groupBy)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, report)
}

// Export handles GET /uploads/{file_id}/metrics/export?groupby=..&format=csv|xlsx.
// The format defaults to csv.
func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fileID := chi.URLParam(r, "file_id")
	groupBy := domain.GroupBy(r.URL.Query().Get("groupby"))

	value, ok := h.queryValidator.ValidateEnum(w, r, "format",
		[]string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}
	format := exporter.Format(value)

	var buf bytes.Buffer
	if err := h.service.Export(ctx, &buf, fileID, groupBy, format); err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	h.logger.DebugContext(ctx, "exporting metrics",
		slog.String("file_id", fileID),
		slog.String("format", value),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exporter.FileName(fileID, groupBy, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
