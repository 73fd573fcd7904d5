package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/pkg/contracts/domain"
)

func tableOf(columns []string, rows ...[]string) *Table {
	t := NewTable(columns)
	for _, r := range rows {
		t.appendRow(r)
	}
	return t
}

func sampleOrders() *Table {
	return tableOf(
		[]string{"order_id", "sku", "item_price", "item_tax", "item_discount", "purchased_date"},
		[]string{"ord1", "SKU001", "10.0", "1.0", "0.5", "2024-01-15"},
		[]string{"ord2", "SKU002", "20.0", "2.0", "1.0", "2024-01-20"},
		[]string{"ord3", "SKU001", "15.0", "1.5", "0.75", "2024-02-01"},
		[]string{"ord4", "SKU003", "5.0", "0.5", "0.25", "2024-02-10"},
		[]string{"ord5", "SKU002", "25.0", "2.5", "1.25", "2024-03-05"},
		[]string{"ord6", "SKU004", "30.0", "3.0", "1.5", "2024-03-10"},
		[]string{"ord7", "SKU001", "12.0", "1.2", "0.6", "2024-04-01"},
		[]string{"ord8", "SKU005", "18.0", "1.8", "0.9", "2024-04-10"},
		[]string{"ord9", "SKU003", "22.0", "2.2", "1.1", "2024-05-01"},
		[]string{"ord10", "SKU006", "8.0", "0.8", "0.4", "2024-05-15"},
	)
}

func newTestAggregator() *Aggregator {
	return NewAggregator(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestAggregator_GroupByMonth(t *testing.T) {
	result, err := newTestAggregator().Aggregate(context.Background(), sampleOrders(), domain.GroupByMonth)
	require.NoError(t, err)

	grand := result.GrandTotals
	assert.Equal(t, 10, grand.TotalOrders)
	assert.InDelta(t, 165.0, grand.GrossSales, 0.001)
	assert.InDelta(t, 16.5, grand.TaxTotal, 0.001)
	assert.InDelta(t, 8.25, grand.DiscountTotal, 0.001)
	assert.InDelta(t, 181.5, grand.NetSales, 0.001)
	assert.InDelta(t, 173.25, grand.GrandTotal, 0.001)
	require.NotNil(t, grand.MostPopularProductSKU)
	require.NotNil(t, grand.LeastPopularProductSKU)
	assert.Equal(t, "SKU001", *grand.MostPopularProductSKU)
	assert.Equal(t, "SKU004", *grand.LeastPopularProductSKU)

	require.NotNil(t, result.StartDate)
	require.NotNil(t, result.EndDate)
	assert.Equal(t, "2024-01-15", *result.StartDate)
	assert.Equal(t, "2024-05-15", *result.EndDate)

	require.Len(t, result.Periods, 5)
	periods := make([]string, 0, len(result.Periods))
	for _, p := range result.Periods {
		periods = append(periods, p.Period)
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}, periods)

	jan := result.Periods[0]
	assert.Equal(t, 2, jan.TotalOrders)
	assert.InDelta(t, 30.0, jan.GrossSales, 0.001)
	assert.InDelta(t, 33.0, jan.NetSales, 0.001)
	assert.InDelta(t, 31.5, jan.GrandTotal, 0.001)
	assert.Equal(t, "SKU001", *jan.MostPopularProductSKU)
	assert.Equal(t, "SKU001", *jan.LeastPopularProductSKU)

	feb := result.Periods[1]
	assert.Equal(t, "SKU001", *feb.MostPopularProductSKU)
}

func TestAggregator_GroupByYear(t *testing.T) {
	result, err := newTestAggregator().Aggregate(context.Background(), sampleOrders(), domain.GroupByYear)
	require.NoError(t, err)

	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2024", result.Periods[0].Period)
	assert.Equal(t, result.GrandTotals, result.Periods[0].Totals)
}

func TestAggregator_Errors(t *testing.T) {
	noDate := tableOf([]string{"order_id", "sku", "item_price"}, []string{"1", "A", "10"})

	tests := []struct {
		name    string
		table   *Table
		groupBy domain.GroupBy
		check   func(t *testing.T, err error)
	}{
		{
			name:    "invalid groupby",
			table:   sampleOrders(),
			groupBy: "quarter",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidGroupBy)
			},
		},
		{
			name:    "invalid groupby wins over missing column",
			table:   noDate,
			groupBy: "",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidGroupBy)
			},
		},
		{
			name:    "missing purchased_date",
			table:   noDate,
			groupBy: domain.GroupByMonth,
			check: func(t *testing.T, err error) {
				var schemaErr *SchemaError
				require.True(t, errors.As(err, &schemaErr))
				assert.Equal(t, "purchased_date", schemaErr.Column)
				assert.Contains(t, err.Error(), "required column 'purchased_date'")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestAggregator().Aggregate(context.Background(), tt.table, tt.groupBy)
			require.Error(t, err)
			assert.Nil(t, result)
			tt.check(t, err)
		})
	}
}

func TestAggregator_EmptyTable(t *testing.T) {
	table := tableOf([]string{"order_id", "sku", "item_price", "item_tax", "item_discount", "purchased_date"})

	result, err := newTestAggregator().Aggregate(context.Background(), table, domain.GroupByMonth)
	require.NoError(t, err)

	assert.Equal(t, 0, result.GrandTotals.TotalOrders)
	assert.Zero(t, result.GrandTotals.GrossSales)
	assert.Zero(t, result.GrandTotals.NetSales)
	assert.Zero(t, result.GrandTotals.GrandTotal)
	assert.Nil(t, result.GrandTotals.MostPopularProductSKU)
	assert.Nil(t, result.GrandTotals.LeastPopularProductSKU)
	assert.Empty(t, result.Periods)
	assert.Nil(t, result.StartDate)
	assert.Nil(t, result.EndDate)
}

func TestAggregator_CoercesBadNumbersToZero(t *testing.T) {
	table := sampleOrders()
	table.rows[0][2] = "abc"
	table.rows[1][3] = "xyz"

	result, err := newTestAggregator().Aggregate(context.Background(), table, domain.GroupByMonth)
	require.NoError(t, err)

	assert.Equal(t, 10, result.GrandTotals.TotalOrders)
	assert.InDelta(t, 155.0, result.GrandTotals.GrossSales, 0.001)
	assert.InDelta(t, 14.5, result.GrandTotals.TaxTotal, 0.001)
	assert.InDelta(t, 169.5, result.GrandTotals.NetSales, 0.001)
	assert.InDelta(t, 161.25, result.GrandTotals.GrandTotal, 0.001)
}

func TestAggregator_DropsUnparsableDates(t *testing.T) {
	table := tableOf(
		[]string{"sku", "item_price", "purchased_date"},
		[]string{"A", "10", "2023-12-31T23:00:00Z"},
		[]string{"B", "20", "not a date"},
		[]string{"C", "30", "01/05/2024"},
		[]string{"D", "40", ""},
		[]string{"E", "50", "2024-2-3"},
		[]string{"F", "60", "2024-03-01T08:00:00+0000"},
	)

	result, err := newTestAggregator().Aggregate(context.Background(), table, domain.GroupByYear)
	require.NoError(t, err)

	assert.Equal(t, 4, result.GrandTotals.TotalOrders)
	assert.InDelta(t, 150.0, result.GrandTotals.GrossSales, 0.001)
	require.Len(t, result.Periods, 2)
	assert.Equal(t, "2023", result.Periods[0].Period)
	assert.Equal(t, "2024", result.Periods[1].Period)
	assert.Equal(t, "2023-12-31", *result.StartDate)
	assert.Equal(t, "2024-03-01", *result.EndDate)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{raw: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "2024-1-5", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "1/5/2024", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "01/05/2024", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "2024/3/9", want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), wantOK: true},
		{raw: " 2024-01-15T10:00:00Z ", want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "2024-01-15T10:00:00+0000", want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "2024-01-15 10:00:00+02:00", want: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "2024-01-15 10:00:00", want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), wantOK: true},
		{raw: "not a date", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseDate(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestAggregator_WithoutSKUColumn(t *testing.T) {
	table := tableOf(
		[]string{"item_price", "purchased_date"},
		[]string{"10", "2024-01-15"},
	)

	result, err := newTestAggregator().Aggregate(context.Background(), table, domain.GroupByMonth)
	require.NoError(t, err)

	assert.Equal(t, 1, result.GrandTotals.TotalOrders)
	assert.Nil(t, result.GrandTotals.MostPopularProductSKU)
	assert.Nil(t, result.Periods[0].LeastPopularProductSKU)
}

func TestAggregator_ClassifiedInput(t *testing.T) {
	text := "purchased_date,item_price,item_tax\n2024-01-15,10,1\n2024-01-20,20,2\n"

	res, err := newTestClassifier().Classify(context.Background(), text)
	require.NoError(t, err)

	result, err := newTestAggregator().Aggregate(context.Background(), res.Table, domain.GroupByMonth)
	require.NoError(t, err)

	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2024-01", result.Periods[0].Period)
	assert.InDelta(t, 30.0, result.Periods[0].GrossSales, 0.001)
	assert.InDelta(t, 33.0, result.Periods[0].NetSales, 0.001)
}
