package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"ordermetrics/internal/dataprocessing"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/files"
	"ordermetrics/internal/infrastructure"
	"ordermetrics/internal/shared/testutil"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

const testSourceURL = "https://files.example.com/orders.csv?sig=abc"

func newTestMetrics(t *testing.T) (*infrastructure.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter(infrastructure.MeterName)
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	require.NoError(t, err)
	return metrics, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name, key, value string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || m.Name != name {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func newTestIngestion(t *testing.T, fetcher Fetcher, publisher EventPublisher, metrics *infrastructure.BusinessMetrics) (*IngestionService, *storage.MemoryStore) {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	store := storage.NewMemoryStore(4)
	svc := NewIngestionService(fetcher, store, IngestionOptions{
		Publisher: publisher,
		Metrics:   metrics,
	}, logger)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.FixedZone("x", 3600)) }
	return svc, store
}

func TestIngestionService_Ingest(t *testing.T) {
	ctx := context.Background()
	body := []byte(testutil.SampleOrderItemsCSV())

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, testSourceURL).Return(body, nil)

	publisher := new(MockEventPublisher)
	publisher.On("PublishUpload", mock.Anything, mock.MatchedBy(func(e domain.UploadEvent) bool {
		return e.Status == domain.UploadStatusCompleted &&
			e.FileID != "" &&
			e.SourceURL == "https://files.example.com/orders.csv" &&
			e.Rows != nil && e.Rows.Usable == 10
	})).Once()

	metrics, reader := newTestMetrics(t)
	svc, store := newTestIngestion(t, fetcher, publisher, metrics)

	entry, err := svc.Ingest(ctx, testSourceURL)
	require.NoError(t, err)

	assert.Len(t, entry.ID, 36)
	assert.Equal(t, entry.ID, entry.Summary.FileID)
	assert.Equal(t, "https://files.example.com/orders.csv", entry.Summary.SourceURL)
	assert.Equal(t, time.UTC, entry.Summary.UploadedAt.Location())
	assert.Equal(t, 8, entry.Summary.UploadedAt.Hour())
	assert.Equal(t, 10, entry.Summary.Rows.Total)
	assert.Equal(t, 10, entry.Summary.Rows.Usable)
	assert.Equal(t, domain.Outcome{Accepted: 10, Rejected: 0}, entry.Summary.Outcome)
	assert.Equal(t, 10, entry.Table.Len())

	stored, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Same(t, entry, stored)

	assert.Equal(t, int64(1), counterValue(t, reader, "uploads_total", "status", domain.UploadStatusCompleted))
	assert.Equal(t, int64(10), counterValue(t, reader, "upload_rows_total", "class", "usable"))

	fetcher.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestIngestionService_IngestClassifiesRows(t *testing.T) {
	csv := testutil.NewOrderItemsCSV(testutil.OrderItemsHeader...).
		Row("ord1", "SKU001", "10.0", "1.0", "0.5", "2024-01-15").
		Raw("").
		Raw(",,,,,").
		Row("ord2", "SKU002", "abc", "2.0", "1.0", "2024-01-20").
		Row("ord1", "SKU001", "10.0", "1.0", "0.5", "2024-01-15").
		Row("ord3", "SKU003", "5.0").
		String()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, testSourceURL).Return([]byte(csv), nil)

	svc, _ := newTestIngestion(t, fetcher, nil, nil)

	entry, err := svc.Ingest(context.Background(), testSourceURL)
	require.NoError(t, err)

	rows := entry.Summary.Rows
	assert.Equal(t, 6, rows.Total)
	assert.Equal(t, 2, rows.Blank)
	assert.Equal(t, 1, rows.StructuralErrors)
	assert.Equal(t, 3, rows.Sanitised)
	assert.Equal(t, 1, rows.Malformed)
	assert.Equal(t, 1, rows.Duplicated)
	assert.Equal(t, 2, rows.Valid)
	assert.Equal(t, 1, rows.Usable)
	assert.Equal(t, domain.Outcome{Accepted: 1, Rejected: 4}, entry.Summary.Outcome)
	assert.Equal(t, 3, entry.Table.Len())
}

func TestIngestionService_IngestErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		fetchErr    error
		encodings   []string
		check       func(t *testing.T, err error)
		checkEvent  func(e domain.UploadEvent) bool
		wantType    apierrors.ErrorType
	}{
		{
			name:     "download failure",
			fetchErr: &files.TransportError{URL: testSourceURL, StatusCode: 404, Err: errors.New("unexpected status 404 Not Found")},
			check: func(t *testing.T, err error) {
				var transportErr *files.TransportError
				require.ErrorAs(t, err, &transportErr)
				assert.Equal(t, 404, transportErr.StatusCode)
			},
			checkEvent: func(e domain.UploadEvent) bool {
				return e.Error == "download failed with status 404" && e.Rows == nil
			},
			wantType: apierrors.ErrTypeNetwork,
		},
		{
			name:      "undecodable bytes",
			body:      []byte{0xff, 0xfe, 0xfd},
			encodings: []string{"utf-8"},
			check: func(t *testing.T, err error) {
				var decodeErr *dataprocessing.DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, 1, decodeErr.EncodingErrors())
			},
			checkEvent: func(e domain.UploadEvent) bool {
				return e.Rows != nil && e.Rows.EncodingErrors == 1
			},
			wantType: apierrors.ErrTypeParsing,
		},
		{
			name: "broken header",
			body: []byte("order_id,\"sku\nord1,SKU001\n"),
			check: func(t *testing.T, err error) {
				var parseErr *dataprocessing.StructuralParseError
				require.ErrorAs(t, err, &parseErr)
			},
			checkEvent: func(e domain.UploadEvent) bool {
				return e.Rows != nil && e.Rows.StructuralErrors == 1
			},
			wantType: apierrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			if tt.fetchErr != nil {
				fetcher.On("Fetch", mock.Anything, testSourceURL).Return(nil, tt.fetchErr)
			} else {
				fetcher.On("Fetch", mock.Anything, testSourceURL).Return(tt.body, nil)
			}

			publisher := new(MockEventPublisher)
			publisher.On("PublishUpload", mock.Anything, mock.MatchedBy(func(e domain.UploadEvent) bool {
				return e.Status == domain.UploadStatusFailed &&
					e.FileID == "" &&
					e.SourceURL == "https://files.example.com/orders.csv" &&
					tt.checkEvent(e)
			})).Once()

			metrics, reader := newTestMetrics(t)
			svc, store := newTestIngestion(t, fetcher, publisher, metrics)
			if tt.encodings != nil {
				svc.encodings = tt.encodings
			}

			entry, err := svc.Ingest(context.Background(), testSourceURL)
			assert.Nil(t, entry)
			tt.check(t, err)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, "files.example.com", appErr.Context["source_host"])

			assert.Equal(t, 0, store.Len())
			assert.Equal(t, int64(1), counterValue(t, reader, "uploads_total", "status", domain.UploadStatusFailed))
			publisher.AssertExpectations(t)
		})
	}
}

func TestIngestionService_StoreFailure(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, testSourceURL).Return([]byte(testutil.SampleOrderItemsCSV()), nil)

	svc, store := newTestIngestion(t, fetcher, nil, nil)
	svc.newID = func() string { return "fixed-id-0001" }

	_, err := svc.Ingest(context.Background(), testSourceURL)
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), testSourceURL)
	assert.ErrorIs(t, err, storage.ErrEntryExists)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	assert.Equal(t, 1, store.Len())
}

func TestSourceHost(t *testing.T) {
	assert.Equal(t, "host.example", sourceHost("http://host.example/a.csv"))
	assert.Equal(t, "invalid", sourceHost("not a url"))
}
