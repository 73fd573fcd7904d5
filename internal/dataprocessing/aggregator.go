package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ordermetrics/pkg/contracts/domain"
)

// DateColumn is the column every aggregated table must carry
const DateColumn = "purchased_date"

// dateLayouts are tried in order when parsing DateColumn values
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1/2/2006 15:04:05",
}

// Aggregator computes sales metrics over a cleaned table
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to slog.Default.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With(slog.String("component", "aggregator"))}
}

// saleRow holds the derived values of one dated row
type saleRow struct {
	date     time.Time
	period   string
	sku      string
	gross    decimal.Decimal
	tax      decimal.Decimal
	discount decimal.Decimal
}

// accumulator sums saleRows and tracks SKU popularity in first-seen order
type accumulator struct {
	orders    int
	gross     decimal.Decimal
	tax       decimal.Decimal
	discount  decimal.Decimal
	skuCounts map[string]int
	skuOrder  []string
}

func newAccumulator() *accumulator {
	return &accumulator{skuCounts: make(map[string]int)}
}

func (a *accumulator) add(r saleRow) {
	a.orders++
	a.gross = a.gross.Add(r.gross)
	a.tax = a.tax.Add(r.tax)
	a.discount = a.discount.Add(r.discount)

	if r.sku == "" {
		return
	}
	if _, seen := a.skuCounts[r.sku]; !seen {
		a.skuOrder = append(a.skuOrder, r.sku)
	}
	a.skuCounts[r.sku]++
}

func (a *accumulator) totals() domain.Totals {
	net := a.gross.Add(a.tax)
	grand := net.Sub(a.discount)

	most, least := a.popularity()
	return domain.Totals{
		TotalOrders:            a.orders,
		GrossSales:             a.gross.InexactFloat64(),
		TaxTotal:               a.tax.InexactFloat64(),
		DiscountTotal:          a.discount.InexactFloat64(),
		NetSales:               net.InexactFloat64(),
		GrandTotal:             grand.InexactFloat64(),
		MostPopularProductSKU:  most,
		LeastPopularProductSKU: least,
	}
}

// popularity picks the most and least frequent SKU. Ties go to the SKU seen first.
func (a *accumulator) popularity() (most, least *string) {
	if len(a.skuOrder) == 0 {
		return nil, nil
	}

	mostSKU, leastSKU := a.skuOrder[0], a.skuOrder[0]
	for _, sku := range a.skuOrder[1:] {
		if a.skuCounts[sku] > a.skuCounts[mostSKU] {
			mostSKU = sku
		}
		if a.skuCounts[sku] < a.skuCounts[leastSKU] {
			leastSKU = sku
		}
	}
	return &mostSKU, &leastSKU
}

// Aggregate groups the table by calendar month or year.
// Rows with an unparsable purchased_date are skipped. Unparsable amounts count as zero.
func (a *Aggregator) Aggregate(ctx context.Context, table *Table, groupBy domain.GroupBy) (*domain.MetricsResult, error) {
	if !groupBy.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroupBy, groupBy)
	}

	dateCol, ok := table.Column(DateColumn)
	if !ok {
		return nil, &SchemaError{Column: DateColumn}
	}

	rows, skipped := a.saleRows(table, dateCol, groupBy)
	if skipped > 0 {
		a.logger.DebugContext(ctx, "skipped rows with unparsable dates",
			slog.Int("skipped", skipped))
	}

	grand := newAccumulator()
	periods := make(map[string]*accumulator)
	var start, end time.Time

	for i, r := range rows {
		grand.add(r)

		acc, ok := periods[r.period]
		if !ok {
			acc = newAccumulator()
			periods[r.period] = acc
		}
		acc.add(r)

		if i == 0 || r.date.Before(start) {
			start = r.date
		}
		if i == 0 || r.date.After(end) {
			end = r.date
		}
	}

	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &domain.MetricsResult{
		GrandTotals: grand.totals(),
		Periods:     make([]domain.PeriodMetrics, 0, len(keys)),
	}
	for _, k := range keys {
		result.Periods = append(result.Periods, domain.PeriodMetrics{
			Period: k,
			Totals: periods[k].totals(),
		})
	}

	if len(rows) > 0 {
		startDate := start.Format("2006-01-02")
		endDate := end.Format("2006-01-02")
		result.StartDate = &startDate
		result.EndDate = &endDate
	}

	a.logger.DebugContext(ctx, "aggregated metrics",
		slog.String("group_by", string(groupBy)),
		slog.Int("rows", len(rows)),
		slog.Int("periods", len(keys)))

	return result, nil
}

func (a *Aggregator) saleRows(table *Table, dateCol int, groupBy domain.GroupBy) ([]saleRow, int) {
	priceCols := table.ColumnsContaining("price")
	taxCols := table.ColumnsContaining("tax")
	discountCols := table.ColumnsContaining("discount")
	skuCol, hasSKU := table.FirstColumn("sku")

	rows := make([]saleRow, 0, table.Len())
	skipped := 0

	for i := 0; i < table.Len(); i++ {
		date, ok := parseDate(table.Value(i, dateCol))
		if !ok {
			skipped++
			continue
		}

		r := saleRow{
			date:     date,
			period:   periodKey(date, groupBy),
			gross:    sumColumns(table, i, priceCols),
			tax:      sumColumns(table, i, taxCols),
			discount: sumColumns(table, i, discountCols),
		}
		if hasSKU {
			r.sku = strings.TrimSpace(table.Value(i, skuCol))
		}
		rows = append(rows, r)
	}

	return rows, skipped
}

func sumColumns(table *Table, row int, cols []int) decimal.Decimal {
	sum := decimal.Zero
	for _, col := range cols {
		sum = sum.Add(decimal.NewFromFloat(NumberOrZero(table.Value(row, col))))
	}
	return sum
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func periodKey(date time.Time, groupBy domain.GroupBy) string {
	if groupBy == domain.GroupByYear {
		return date.Format("2006")
	}
	return date.Format("2006-01")
}
