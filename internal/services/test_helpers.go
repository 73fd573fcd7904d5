package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ordermetrics/pkg/contracts/domain"
)

// MockFetcher is a mock for the Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockEventPublisher is a mock for the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUpload(ctx context.Context, event domain.UploadEvent) {
	m.Called(ctx, event)
}
