package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// OrderItemsHeader is the header of the sample order items file
var OrderItemsHeader = []string{
	"order_id", "sku", "item_price", "item_tax", "item_discount", "purchased_date",
}

// SampleOrderItems are ten clean rows spread over January to May 2024.
//
//	gross 165, tax 16.5, discount 8.25, net 181.5, grand 173.25
//	most popular SKU001, least popular SKU004
var SampleOrderItems = [][]string{
	{"ord1", "SKU001", "10.0", "1.0", "0.5", "2024-01-15"},
	{"ord2", "SKU002", "20.0", "2.0", "1.0", "2024-01-20"},
	{"ord3", "SKU001", "15.0", "1.5", "0.75", "2024-02-01"},
	{"ord4", "SKU003", "5.0", "0.5", "0.25", "2024-02-10"},
	{"ord5", "SKU002", "25.0", "2.5", "1.25", "2024-03-05"},
	{"ord6", "SKU004", "30.0", "3.0", "1.5", "2024-03-10"},
	{"ord7", "SKU001", "12.0", "1.2", "0.6", "2024-04-01"},
	{"ord8", "SKU005", "18.0", "1.8", "0.9", "2024-04-10"},
	{"ord9", "SKU003", "22.0", "2.2", "1.1", "2024-05-01"},
	{"ord10", "SKU006", "8.0", "0.8", "0.4", "2024-05-15"},
}

// OrderItemsCSV builds CSV text line by line
type OrderItemsCSV struct {
	lines []string
}

// NewOrderItemsCSV starts a CSV with the given header
func NewOrderItemsCSV(header ...string) *OrderItemsCSV {
	return &OrderItemsCSV{lines: []string{strings.Join(header, ",")}}
}

// Row appends a comma-joined row
func (b *OrderItemsCSV) Row(fields ...string) *OrderItemsCSV {
	b.lines = append(b.lines, strings.Join(fields, ","))
	return b
}

// Rows appends several rows
func (b *OrderItemsCSV) Rows(rows [][]string) *OrderItemsCSV {
	for _, r := range rows {
		b.Row(r...)
	}
	return b
}

// Raw appends a line verbatim
func (b *OrderItemsCSV) Raw(line string) *OrderItemsCSV {
	b.lines = append(b.lines, line)
	return b
}

// String returns the CSV with a trailing newline
func (b *OrderItemsCSV) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}

// SampleOrderItemsCSV returns the sample order items as CSV text
func SampleOrderItemsCSV() string {
	return NewOrderItemsCSV(OrderItemsHeader...).Rows(SampleOrderItems).String()
}

// NewCSVServer serves body as text/csv on every path until the test ends
func NewCSVServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
