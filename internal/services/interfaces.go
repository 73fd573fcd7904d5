package services

import (
	"context"

	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

// Fetcher downloads the raw bytes of a CSV source
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// UploadStore keeps ingested uploads
type UploadStore interface {
	Put(entry *storage.Entry) error
	Get(id string) (*storage.Entry, error)
	Len() int
}

// EventPublisher broadcasts the outcome of ingestions
type EventPublisher interface {
	PublishUpload(ctx context.Context, event domain.UploadEvent)
}
