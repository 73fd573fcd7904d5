package http

import (
	"errors"

	"ordermetrics/internal/dataprocessing"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/files"
	"ordermetrics/internal/services"
)

// toAPIError maps domain errors to API errors. The problem detail is the
// domain error's own text, not that of any AppError wrapping it. Errors it
// does not know are returned unchanged for the ErrorHandler to classify.
func toAPIError(err error) error {
	var (
		transportErr *files.TransportError
		decodeErr    *dataprocessing.DecodeError
		parseErr     *dataprocessing.StructuralParseError
		schemaErr    *dataprocessing.SchemaError
	)

	switch {
	case errors.As(err, &transportErr):
		return apierrors.DownloadFailed(transportErr)
	case errors.As(err, &decodeErr):
		return apierrors.DecodeFailed(decodeErr)
	case errors.As(err, &parseErr):
		return apierrors.InvalidCSV(parseErr)
	case errors.As(err, &schemaErr):
		return apierrors.MissingColumn(schemaErr, schemaErr.Column)
	case errors.Is(err, services.ErrInvalidFileID):
		return apierrors.ErrInvalidFileID
	case errors.Is(err, services.ErrUploadNotFound):
		return apierrors.ErrUploadNotFound
	case errors.Is(err, services.ErrInvalidGroupBy):
		return apierrors.ErrInvalidGroupBy
	default:
		return err
	}
}
