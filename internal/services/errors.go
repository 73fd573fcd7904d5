package services

import (
	"errors"

	"ordermetrics/internal/dataprocessing"
)

// Service errors surfaced to the transport layer
var (
	// ErrInvalidFileID is returned for ids shorter than config.MinFileIDLength
	ErrInvalidFileID = errors.New("invalid file ID format")

	// ErrUploadNotFound is returned for well-formed ids that were never stored
	ErrUploadNotFound = errors.New("file ID does not exist")

	// ErrInvalidGroupBy is returned when groupby is neither month nor year
	ErrInvalidGroupBy = dataprocessing.ErrInvalidGroupBy
)
