package domain

import (
	"time"
)

// GroupBy is the calendar unit used to bucket sales metrics
type GroupBy string

const (
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

// IsValid reports whether g is a supported grouping unit
func (g GroupBy) IsValid() bool {
	return g == GroupByMonth || g == GroupByYear
}

// Totals holds the aggregated figures for a set of order rows
type Totals struct {
	TotalOrders            int     `json:"total_orders"`
	GrossSales             float64 `json:"gross_sales"`
	TaxTotal               float64 `json:"tax_total"`
	DiscountTotal          float64 `json:"discount_total"`
	NetSales               float64 `json:"net_sales"`
	GrandTotal             float64 `json:"grand_total"`
	MostPopularProductSKU  *string `json:"most_popular_product_sku"`
	LeastPopularProductSKU *string `json:"least_popular_product_sku"`
}

// PeriodMetrics is Totals restricted to one month or year
type PeriodMetrics struct {
	Period string `json:"period"`
	Totals
}

// MetricsResult is computed on demand from a cleaned table and never stored
type MetricsResult struct {
	GrandTotals Totals          `json:"grand_totals"`
	Periods     []PeriodMetrics `json:"metrics"`
	StartDate   *string         `json:"start_date"`
	EndDate     *string         `json:"end_date"`
}

// MetricsReport is the response body of the metrics endpoint
type MetricsReport struct {
	GroupBy     GroupBy         `json:"group_by"`
	StartDate   *string         `json:"start_date"`
	EndDate     *string         `json:"end_date"`
	UploadedAt  time.Time       `json:"uploaded_at"`
	GrandTotals Totals          `json:"grand_totals"`
	Metrics     []PeriodMetrics `json:"metrics"`
}

// NewMetricsReport combines a metrics result with its upload summary
func NewMetricsReport(groupBy GroupBy, summary Summary, result *MetricsResult) *MetricsReport {
	return &MetricsReport{
		GroupBy:     groupBy,
		StartDate:   result.StartDate,
		EndDate:     result.EndDate,
		UploadedAt:  summary.UploadedAt,
		GrandTotals: result.GrandTotals,
		Metrics:     result.Periods,
	}
}
