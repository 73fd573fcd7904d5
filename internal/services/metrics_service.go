package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ordermetrics/internal/config"
	"ordermetrics/internal/dataprocessing"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/exporter"
	"ordermetrics/internal/infrastructure"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

// MetricsOptions carries the optional collaborators of MetricsService
type MetricsOptions struct {
	Exporter *exporter.Exporter
	Metrics  *infrastructure.BusinessMetrics
	Tracer   trace.Tracer
}

// MetricsService answers queries about stored uploads
type MetricsService struct {
	store      UploadStore
	aggregator *dataprocessing.Aggregator
	exporter   *exporter.Exporter
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewMetricsService creates a metrics service
func NewMetricsService(store UploadStore, opts MetricsOptions, logger *slog.Logger) *MetricsService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.MeterName)
	}

	logger = logger.With(slog.String("service", "metrics"))
	if opts.Exporter == nil {
		opts.Exporter = exporter.New(logger)
	}

	return &MetricsService{
		store:      store,
		aggregator: dataprocessing.NewAggregator(logger),
		exporter:   opts.Exporter,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		logger:     logger,
	}
}

// ValidateFileID rejects ids shorter than config.MinFileIDLength
func ValidateFileID(id string) error {
	if len(id) < config.MinFileIDLength {
		return ErrInvalidFileID
	}
	return nil
}

// ProcessingStats returns the summary recorded when the upload was ingested
func (s *MetricsService) ProcessingStats(ctx context.Context, id string) (*domain.Summary, error) {
	entry, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := entry.Summary
	return &summary, nil
}

// Metrics aggregates the stored table of an upload by month or year
func (s *MetricsService) Metrics(ctx context.Context, id string, groupBy domain.GroupBy) (*domain.MetricsReport, error) {
	if err := ValidateFileID(id); err != nil {
		return nil, err
	}
	if !groupBy.IsValid() {
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("invalid groupby %q", groupBy), ErrInvalidGroupBy)
	}

	entry, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "metrics.aggregate", trace.WithAttributes(
		attribute.String("file.id", id),
		attribute.String("group_by", string(groupBy)),
	))
	defer span.End()

	result, err := s.aggregator.Aggregate(ctx, entry.Table, groupBy)
	infrastructure.RecordMetricsQuery(ctx, s.metrics, groupBy, err == nil)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(infrastructure.LoggerWithContext(ctx, s.logger), err).
			WarnContext(ctx, "metrics aggregation failed", slog.String("file_id", id))
		return nil, err
	}

	span.SetAttributes(attribute.Int("periods", len(result.Periods)))
	return domain.NewMetricsReport(groupBy, entry.Summary, result), nil
}

// Export writes the metrics report of an upload to w
func (s *MetricsService) Export(ctx context.Context, w io.Writer, id string, groupBy domain.GroupBy, format exporter.Format) error {
	report, err := s.Metrics(ctx, id, groupBy)
	if err != nil {
		return err
	}

	if err := s.exporter.Export(w, format, report); err != nil {
		return fmt.Errorf("failed to export metrics: %w", err)
	}
	infrastructure.RecordExport(ctx, s.metrics, string(format))
	return nil
}

// Report computes the metrics report of a table that was never stored
func (s *MetricsService) Report(ctx context.Context, table *dataprocessing.Table, summary domain.Summary, groupBy domain.GroupBy) (*domain.MetricsReport, error) {
	result, err := s.aggregator.Aggregate(ctx, table, groupBy)
	if err != nil {
		return nil, err
	}
	return domain.NewMetricsReport(groupBy, summary, result), nil
}

func (s *MetricsService) lookup(ctx context.Context, id string) (*storage.Entry, error) {
	if err := ValidateFileID(id); err != nil {
		return nil, err
	}

	entry, err := s.store.Get(id)
	if errors.Is(err, storage.ErrEntryNotFound) {
		infrastructure.LoggerWithContext(ctx, s.logger).DebugContext(ctx, "upload not found",
			slog.String("file_id", id))
		return nil, apierrors.NewNotFoundError("upload", ErrUploadNotFound).WithContext("file_id", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}
