package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ordermetrics/internal/dataprocessing"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/exporter"
	"ordermetrics/internal/services"
	"ordermetrics/pkg/contracts/domain"
)

func TestMetricsHandler_ProcessingStats(t *testing.T) {
	summary := &domain.Summary{
		FileID:     testFileID,
		SourceURL:  sourceURL,
		UploadedAt: time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
		Rows:       domain.RowCounts{Total: 10, Blank: 1, Sanitised: 9, Valid: 8, Malformed: 1, Usable: 8},
		Outcome:    domain.Outcome{Accepted: 8, Rejected: 2},
	}

	for _, path := range []string{
		"/uploads/" + testFileID + "/processing-stats",
		"/api/v1/order-items/uploads/" + testFileID + "/processing-stats",
	} {
		t.Run(path, func(t *testing.T) {
			metrics := new(MockMetricsService)
			metrics.On("ProcessingStats", mock.Anything, testFileID).Return(summary, nil)

			rec := httptest.NewRecorder()
			newTestRouter(t, new(MockIngestionService), metrics).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, rec.Code)

			var got domain.Summary
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, *summary, got)
			metrics.AssertExpectations(t)
		})
	}
}

func TestMetricsHandler_InvalidFileID(t *testing.T) {
	for _, path := range []string{
		"/uploads/abc123/processing-stats",
		"/uploads/abc123/metrics?groupby=month",
		"/api/v1/order-items/uploads/abc123/metrics/export?groupby=month",
	} {
		t.Run(path, func(t *testing.T) {
			metrics := new(MockMetricsService)

			rec := httptest.NewRecorder()
			newTestRouter(t, new(MockIngestionService), metrics).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, apierrors.TypeValidation, problem["type"])
			assert.Equal(t, "Invalid file ID format.", problem["detail"])
			assert.Empty(t, metrics.Calls)
		})
	}
}

func TestMetricsHandler_Metrics(t *testing.T) {
	start, end := "2024-01-05", "2024-05-20"
	report := &domain.MetricsReport{
		GroupBy:     domain.GroupByMonth,
		StartDate:   &start,
		EndDate:     &end,
		GrandTotals: domain.Totals{TotalOrders: 9, GrossSales: 320.5},
		Metrics: []domain.PeriodMetrics{
			{Period: "2024-01", Totals: domain.Totals{TotalOrders: 2, GrossSales: 40}},
		},
	}

	metrics := new(MockMetricsService)
	metrics.On("Metrics", mock.Anything, testFileID, domain.GroupByMonth).Return(report, nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, new(MockIngestionService), metrics).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/order-items/uploads/"+testFileID+"/metrics?groupby=month", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "month", body["group_by"])
	assert.Equal(t, start, body["start_date"])
	assert.Equal(t, end, body["end_date"])
	assert.Len(t, body["metrics"], 1)
	metrics.AssertExpectations(t)
}

func TestMetricsHandler_MetricsErrors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		groupBy    domain.GroupBy
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "unknown upload",
			query:      "?groupby=year",
			groupBy:    domain.GroupByYear,
			err:        services.ErrUploadNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeUploadNotFound,
			wantDetail: "File ID does not exist.",
		},
		{
			name:       "invalid groupby",
			query:      "?groupby=week",
			groupBy:    domain.GroupBy("week"),
			err:        fmt.Errorf("%w: %q", services.ErrInvalidGroupBy, "week"),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "Invalid groupby value",
		},
		{
			name:       "missing groupby",
			query:      "",
			groupBy:    domain.GroupBy(""),
			err:        fmt.Errorf("%w: %q", services.ErrInvalidGroupBy, ""),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
			wantDetail: "Invalid groupby value",
		},
		{
			name:       "missing date column",
			query:      "?groupby=month",
			groupBy:    domain.GroupByMonth,
			err:        &dataprocessing.SchemaError{Column: dataprocessing.DateColumn},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeMissingColumn,
			wantDetail: "missing required column 'purchased_date'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := new(MockMetricsService)
			metrics.On("Metrics", mock.Anything, testFileID, tt.groupBy).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			newTestRouter(t, new(MockIngestionService), metrics).ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, "/uploads/"+testFileID+"/metrics"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, tt.wantDetail, problem["detail"])
			metrics.AssertExpectations(t)
		})
	}
}

func TestMetricsHandler_Export(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		format          exporter.Format
		wantContentType string
		wantFileName    string
	}{
		{
			name:            "default csv",
			query:           "?groupby=month",
			format:          exporter.FormatCSV,
			wantContentType: "text/csv; charset=utf-8",
			wantFileName:    "metrics_" + testFileID + "_month.csv",
		},
		{
			name:            "xlsx",
			query:           "?groupby=year&format=xlsx",
			format:          exporter.FormatXLSX,
			wantContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantFileName:    "metrics_" + testFileID + "_year.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groupBy := domain.GroupByMonth
			if tt.format == exporter.FormatXLSX {
				groupBy = domain.GroupByYear
			}

			metrics := new(MockMetricsService)
			metrics.On("Export", mock.Anything, mock.Anything, testFileID, groupBy, tt.format).
				Run(func(args mock.Arguments) {
					_, _ = io.WriteString(args.Get(1).(io.Writer), "period,total_orders\n")
				}).
				Return(nil)

			rec := httptest.NewRecorder()
			newTestRouter(t, new(MockIngestionService), metrics).ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, "/uploads/"+testFileID+"/metrics/export"+tt.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, fmt.Sprintf("attachment; filename=%q", tt.wantFileName), rec.Header().Get("Content-Disposition"))
			assert.Equal(t, "period,total_orders\n", rec.Body.String())
			metrics.AssertExpectations(t)
		})
	}
}

func TestMetricsHandler_ExportErrors(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		metrics := new(MockMetricsService)

		rec := httptest.NewRecorder()
		newTestRouter(t, new(MockIngestionService), metrics).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/uploads/"+testFileID+"/metrics/export?groupby=month&format=pdf", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec)["type"])
		assert.Empty(t, metrics.Calls)
	})

	t.Run("unknown upload", func(t *testing.T) {
		metrics := new(MockMetricsService)
		metrics.On("Export", mock.Anything, mock.Anything, testFileID, domain.GroupByMonth, exporter.FormatCSV).
			Return(services.ErrUploadNotFound)

		rec := httptest.NewRecorder()
		newTestRouter(t, new(MockIngestionService), metrics).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/uploads/"+testFileID+"/metrics/export?groupby=month", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeUploadNotFound, decodeProblem(t, rec)["type"])
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}
