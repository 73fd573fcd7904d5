package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ordermetrics/internal/config"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/exporter"
	appmiddleware "ordermetrics/internal/middleware"
	"ordermetrics/internal/shared/testutil"
	"ordermetrics/internal/storage"
	"ordermetrics/pkg/contracts/domain"
)

const testFileID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

// MockIngestionService is a mock implementation of IngestionService
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, sourceURL string) (*storage.Entry, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Entry), args.Error(1)
}

// MockMetricsService is a mock implementation of MetricsService
type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) ProcessingStats(ctx context.Context, id string) (*domain.Summary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockMetricsService) Metrics(ctx context.Context, id string, groupBy domain.GroupBy) (*domain.MetricsReport, error) {
	args := m.Called(ctx, id, groupBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MetricsReport), args.Error(1)
}

func (m *MockMetricsService) Export(ctx context.Context, w io.Writer, id string, groupBy domain.GroupBy, format exporter.Format) error {
	args := m.Called(ctx, w, id, groupBy, format)
	return args.Error(0)
}

// newTestRouter mounts the order item routes at the root and under the API prefix
func newTestRouter(t *testing.T, ingest IngestionService, metrics MetricsService) chi.Router {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := appmiddleware.NewValidator(logger)

	routes := OrderItemsRoutes(
		NewUploadHandler(ingest, validator, logger, errorHandler),
		NewMetricsHandler(metrics, validator, logger, errorHandler),
	)

	r := chi.NewRouter()
	r.Group(routes)
	r.Route(config.OrderItemsPath, routes)
	return r
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	assert.Equal(t, apierrors.ContentType, rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
