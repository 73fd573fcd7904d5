package domain

import (
	"time"
)

// Summary is the processing record kept for every ingested CSV file.
// It is created once per ingestion and never modified afterwards.
type Summary struct {
	FileID     string    `json:"file_id"`
	SourceURL  string    `json:"source_url"`
	UploadedAt time.Time `json:"uploaded_at"`
	Durations  Durations `json:"durations"`
	Rows       RowCounts `json:"rows"`
	Outcome    Outcome   `json:"outcome"`
}

// Durations splits the ingestion time between download and processing
type Durations struct {
	DownloadSeconds   int64  `json:"download_seconds"`
	ProcessingSeconds int64  `json:"processing_seconds"`
	Download          string `json:"download"`
	Processing        string `json:"processing"`
}

// NewDurations builds Durations from measured elapsed times
func NewDurations(download, processing time.Duration) Durations {
	return Durations{
		DownloadSeconds:   int64(download / time.Second),
		ProcessingSeconds: int64(processing / time.Second),
		Download:          download.Round(time.Millisecond).String(),
		Processing:        processing.Round(time.Millisecond).String(),
	}
}

// RowCounts is the row classification breakdown of one file.
//
//	Sanitised = Total - Blank - StructuralErrors
//	Valid     = Sanitised - Malformed
//	Usable    = max(0, Valid - Duplicated)
type RowCounts struct {
	Total            int `json:"total"`
	Blank            int `json:"blank"`
	StructuralErrors int `json:"structural_errors"`
	Malformed        int `json:"malformed"`
	EncodingErrors   int `json:"encoding_errors"`
	Duplicated       int `json:"duplicated"`
	Sanitised        int `json:"sanitised"`
	Valid            int `json:"valid"`
	Usable           int `json:"usable"`
}

// Outcome reports accepted and rejected rows.
// Structural errors are not part of Rejected.
type Outcome struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// OutcomeFor derives the outcome from a row breakdown
func OutcomeFor(rows RowCounts) Outcome {
	return Outcome{
		Accepted: rows.Usable,
		Rejected: rows.Blank + rows.Malformed + rows.Duplicated,
	}
}

// UploadEvent is published when an ingestion finishes
type UploadEvent struct {
	FileID    string     `json:"file_id,omitempty"`
	SourceURL string     `json:"source_url"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Rows      *RowCounts `json:"rows,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Upload event statuses
const (
	UploadStatusCompleted = "completed"
	UploadStatusFailed    = "failed"
)
