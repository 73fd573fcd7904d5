package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ordermetrics/pkg/contracts/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the media type of an exported file
func ContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the attachment name of an exported report
func FileName(fileID string, groupBy domain.GroupBy, format Format) string {
	return fmt.Sprintf("metrics_%s_%s.%s", fileID, groupBy, format)
}

// ReportHeaders are the columns of an exported metrics report
var ReportHeaders = []string{
	"period",
	"total_orders",
	"gross_sales",
	"tax_total",
	"discount_total",
	"net_sales",
	"grand_total",
	"most_popular_product_sku",
	"least_popular_product_sku",
}

// TotalPeriod labels the grand total row
const TotalPeriod = "total"

// ReportRecords flattens a report into one record per period plus the grand total
func ReportRecords(report *domain.MetricsReport) [][]string {
	records := make([][]string, 0, len(report.Metrics)+1)
	for _, p := range report.Metrics {
		records = append(records, totalsRecord(p.Period, p.Totals))
	}
	return append(records, totalsRecord(TotalPeriod, report.GrandTotals))
}

func totalsRecord(period string, t domain.Totals) []string {
	return []string{
		period,
		formatInt(t.TotalOrders),
		formatFloat(t.GrossSales),
		formatFloat(t.TaxTotal),
		formatFloat(t.DiscountTotal),
		formatFloat(t.NetSales),
		formatFloat(t.GrandTotal),
		formatOptional(t.MostPopularProductSKU),
		formatOptional(t.LeastPopularProductSKU),
	}
}

// Exporter writes metrics reports in the supported formats
type Exporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// Export writes report to w in the given format
func (e *Exporter) Export(w io.Writer, format Format, report *domain.MetricsReport) error {
	e.logger.Debug("exporting metrics report",
		slog.String("format", string(format)),
		slog.String("group_by", string(report.GroupBy)),
		slog.Int("periods", len(report.Metrics)))

	switch format {
	case FormatCSV:
		return e.csv.Write(w, WriteOptions{
			Headers:   ReportHeaders,
			Records:   ReportRecords(report),
			BOMPrefix: true,
		})
	case FormatXLSX:
		return writeXLSX(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExportFile writes report to path. CSV goes through CSVWriter.WriteFile.
func (e *Exporter) ExportFile(path string, format Format, report *domain.MetricsReport) error {
	if format == FormatCSV {
		return e.csv.WriteFile(path, WriteOptions{
			Headers:   ReportHeaders,
			Records:   ReportRecords(report),
			BOMPrefix: true,
		})
	}
	return writeXLSXFile(path, report)
}
