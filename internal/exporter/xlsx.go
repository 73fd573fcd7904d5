package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"ordermetrics/pkg/contracts/domain"
)

// Sheet names of an exported workbook
const (
	MetricsSheet = "Metrics"
	SummarySheet = "Summary"
)

func buildWorkbook(report *domain.MetricsReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", MetricsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeMetricsSheet(f, report); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummarySheet(f, report); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeMetricsSheet(f *excelize.File, report *domain.MetricsReport) error {
	header := make([]interface{}, len(ReportHeaders))
	for i, h := range ReportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(MetricsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(MetricsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	rows := make([]domain.PeriodMetrics, 0, len(report.Metrics)+1)
	rows = append(rows, report.Metrics...)
	rows = append(rows, domain.PeriodMetrics{Period: TotalPeriod, Totals: report.GrandTotals})

	for i, p := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			p.Period,
			p.TotalOrders,
			p.GrossSales,
			p.TaxTotal,
			p.DiscountTotal,
			p.NetSales,
			p.GrandTotal,
			formatOptional(p.MostPopularProductSKU),
			formatOptional(p.LeastPopularProductSKU),
		}
		if err := f.SetSheetRow(MetricsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.SetColWidth(MetricsSheet, "A", "I", 18)
}

func writeSummarySheet(f *excelize.File, report *domain.MetricsReport) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	pairs := [][]interface{}{
		{"group_by", string(report.GroupBy)},
		{"start_date", formatOptional(report.StartDate)},
		{"end_date", formatOptional(report.EndDate)},
		{"uploaded_at", report.UploadedAt.UTC().Format(time.RFC3339)},
	}
	for i, pair := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &pair); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeXLSX(w io.Writer, report *domain.MetricsReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeXLSXFile(path string, report *domain.MetricsReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
