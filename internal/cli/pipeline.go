package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"ordermetrics/internal/dataprocessing"
	"ordermetrics/internal/files"
	"ordermetrics/internal/validation"
	"ordermetrics/pkg/contracts/domain"
)

// classifiedFile is a local CSV after decoding and classification
type classifiedFile struct {
	Table   *dataprocessing.Table
	Summary domain.Summary
}

// classifyFile reads path and runs it through the same decode and classify
// steps as an HTTP upload
func classifyFile(ctx context.Context, opts *rootOptions, path string) (*classifiedFile, error) {
	if err := validation.NewFileValidator(opts.logger).ValidateInputFile(path); err != nil {
		return nil, err
	}

	uploadedAt := time.Now().UTC()

	readStart := time.Now()
	raw, err := files.ReadLocal(path, opts.cfg.Ingest.MaxBytes)
	read := time.Since(readStart)
	if err != nil {
		return nil, err
	}

	processStart := time.Now()
	text, err := dataprocessing.DecodeText(raw, opts.cfg.Ingest.Encodings)
	if err != nil {
		return nil, err
	}

	result, err := dataprocessing.NewClassifier(opts.logger).Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	processing := time.Since(processStart)

	opts.logger.DebugContext(ctx, "file classified",
		slog.String("path", path),
		slog.Int("bytes", len(raw)),
		slog.Int("rows_total", result.Rows.Total),
		slog.Duration("processing", processing))

	return &classifiedFile{
		Table: result.Table,
		Summary: domain.Summary{
			FileID:     fileStem(path),
			SourceURL:  path,
			UploadedAt: uploadedAt,
			Durations:  domain.NewDurations(read, processing),
			Rows:       result.Rows,
			Outcome:    domain.OutcomeFor(result.Rows),
		},
	}, nil
}

// fileStem is the base name of path without its extension
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
