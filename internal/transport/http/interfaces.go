package http

import (
	"context"
	"io"

	"ordermetrics/internal/exporter"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

// IngestionService ingests a CSV source. Satisfied by *services.IngestionService.
type IngestionService interface {
	Ingest(ctx context.Context, sourceURL string) (*storage.Entry, error)
}

// MetricsService answers queries about stored uploads. Satisfied by *services.MetricsService.
type MetricsService interface {
	ProcessingStats(ctx context.Context, id string) (*domain.Summary, error)
	Metrics(ctx context.Context, id string, groupBy domain.GroupBy) (*domain.MetricsReport, error)
	Export(ctx context.Context, w io.Writer, id string, groupBy domain.GroupBy, format exporter.Format) error
}
