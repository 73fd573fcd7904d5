package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ordermetrics/internal/dataprocessing"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/files"
	"ordermetrics/internal/infrastructure"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

// IngestionOptions carries the optional collaborators of IngestionService
type IngestionOptions struct {
	Encodings []string
	Publisher EventPublisher
	Metrics   *infrastructure.BusinessMetrics
	Tracer    trace.Tracer
}

// IngestionService downloads, classifies and stores CSV files
type IngestionService struct {
	fetcher    Fetcher
	store      UploadStore
	classifier *dataprocessing.Classifier
	encodings  []string
	publisher  EventPublisher
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewIngestionService creates an ingestion service
func NewIngestionService(fetcher Fetcher, store UploadStore, opts IngestionOptions, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.MeterName)
	}
	if len(opts.Encodings) == 0 {
		opts.Encodings = dataprocessing.DefaultEncodings
	}

	logger = logger.With(slog.String("service", "ingestion"))
	return &IngestionService{
		fetcher:    fetcher,
		store:      store,
		classifier: dataprocessing.NewClassifier(logger),
		encodings:  opts.Encodings,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Ingest fetches sourceURL, classifies its rows and stores the cleaned table.
// Transport, decode and header parse errors are returned unchanged.
func (s *IngestionService) Ingest(ctx context.Context, sourceURL string) (*storage.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.ingest",
		trace.WithAttributes(attribute.String("source.host", sourceHost(sourceURL))))
	defer span.End()

	log := infrastructure.LoggerWithContext(ctx, s.logger)
	uploadedAt := s.now().UTC()
	redacted := files.RedactURL(sourceURL)

	fetchStart := time.Now()
	raw, err := s.fetch(ctx, sourceURL)
	download := time.Since(fetchStart)
	if err != nil {
		return nil, s.fail(ctx, sourceURL, infrastructure.UploadObservation{Download: download}, err)
	}

	processStart := time.Now()
	result, err := s.process(ctx, raw)
	processing := time.Since(processStart)

	obs := infrastructure.UploadObservation{
		Bytes:      int64(len(raw)),
		Download:   download,
		Processing: processing,
	}
	if err != nil {
		var decodeErr *dataprocessing.DecodeError
		if errors.As(err, &decodeErr) {
			obs.Rows = &domain.RowCounts{EncodingErrors: decodeErr.EncodingErrors()}
		} else if result != nil {
			obs.Rows = &result.Rows
		}
		return nil, s.fail(ctx, sourceURL, obs, err)
	}

	summary := domain.Summary{
		FileID:     s.newID(),
		SourceURL:  redacted,
		UploadedAt: uploadedAt,
		Durations:  domain.NewDurations(download, processing),
		Rows:       result.Rows,
		Outcome:    domain.OutcomeFor(result.Rows),
	}

	entry := &storage.Entry{
		ID:      summary.FileID,
		Table:   result.Table,
		Summary: summary,
	}
	if err := s.store.Put(entry); err != nil {
		storeErr := apierrors.NewStorageError("failed to store upload", err).
			WithContext("file_id", entry.ID)
		return nil, s.fail(ctx, sourceURL, obs, storeErr)
	}
	infrastructure.RecordStoredUploadChange(ctx, s.metrics, 1)

	obs.Status = domain.UploadStatusCompleted
	obs.Rows = &summary.Rows
	infrastructure.RecordUploadMetrics(ctx, s.metrics, obs)

	span.SetAttributes(
		attribute.String("file.id", entry.ID),
		attribute.Int("rows.total", summary.Rows.Total),
		attribute.Int("rows.usable", summary.Rows.Usable),
	)

	log.InfoContext(ctx, "upload processed",
		slog.String("file_id", entry.ID),
		slog.String("source_host", sourceHost(sourceURL)),
		slog.Int("rows_total", summary.Rows.Total),
		slog.Int("rows_accepted", summary.Outcome.Accepted),
		slog.Int("rows_rejected", summary.Outcome.Rejected),
		slog.Duration("download", download),
		slog.Duration("processing", processing))

	s.publish(ctx, domain.UploadEvent{
		FileID:    entry.ID,
		SourceURL: redacted,
		Status:    domain.UploadStatusCompleted,
		Rows:      &summary.Rows,
		Timestamp: s.now().UTC(),
	})

	return entry, nil
}

func (s *IngestionService) fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.fetch")
	defer span.End()

	raw, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(raw)))
	return raw, nil
}

// process decodes and classifies raw. On a header parse error the partial
// result is returned alongside the error.
func (s *IngestionService) process(ctx context.Context, raw []byte) (*dataprocessing.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.classify")
	defer span.End()

	text, err := dataprocessing.DecodeText(raw, s.encodings)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, text)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return result, err
	}

	infrastructure.AddSpanEvent(ctx, "classified",
		attribute.Int("rows.sanitised", result.Rows.Sanitised),
		attribute.Int("rows.duplicated", result.Rows.Duplicated))
	return result, nil
}

// fail records a failed upload and returns err wrapped in an AppError of
// its kind. The wrapped error still matches the domain error types.
func (s *IngestionService) fail(ctx context.Context, sourceURL string, obs infrastructure.UploadObservation, err error) error {
	infrastructure.RecordError(ctx, err)

	obs.Status = domain.UploadStatusFailed
	infrastructure.RecordUploadMetrics(ctx, s.metrics, obs)

	appErr := wrapFailure(err).WithContext("source_host", sourceHost(sourceURL))

	infrastructure.WithError(infrastructure.LoggerWithContext(ctx, s.logger), err).WarnContext(ctx, "upload failed",
		slog.String("source_url", files.RedactURL(sourceURL)),
		slog.String("error_type", string(appErr.Type)))

	s.publish(ctx, domain.UploadEvent{
		SourceURL: files.RedactURL(sourceURL),
		Status:    domain.UploadStatusFailed,
		Error:     failureReason(err),
		Rows:      obs.Rows,
		Timestamp: s.now().UTC(),
	})

	return appErr
}

func wrapFailure(err error) *apierrors.AppError {
	var (
		appErr    *apierrors.AppError
		decodeErr *dataprocessing.DecodeError
		parseErr  *dataprocessing.StructuralParseError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &decodeErr):
		return apierrors.NewParsingError("csv could not be decoded", err)
	case errors.As(err, &parseErr):
		return apierrors.NewParsingError("csv header could not be parsed", err)
	default:
		// everything else comes from the fetcher
		return apierrors.NewNetworkError("download failed", err)
	}
}

func (s *IngestionService) publish(ctx context.Context, event domain.UploadEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishUpload(ctx, event)
}

// sourceHost is the host of a source URL, or "invalid" when it does not parse
func sourceHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}

// failureReason is the error text broadcast to event subscribers. Download
// errors are reduced to their status since their text carries the full URL.
func failureReason(err error) string {
	var transportErr *files.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode != 0 {
			return fmt.Sprintf("download failed with status %d", transportErr.StatusCode)
		}
		return "download failed"
	}

	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
