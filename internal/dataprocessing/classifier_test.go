package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/pkg/contracts/domain"
)

func newTestClassifier() *Classifier {
	return NewClassifier(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        domain.RowCounts
		wantRows    int
		wantColumns []string
		wantClasses []RowClass
	}{
		{
			name:        "empty input",
			text:        "",
			want:        domain.RowCounts{},
			wantRows:    0,
			wantColumns: []string{},
		},
		{
			name:        "blank line only",
			text:        "\n",
			want:        domain.RowCounts{},
			wantRows:    0,
			wantColumns: []string{},
		},
		{
			name:        "whitespace only",
			text:        "  \r\n\t\n",
			want:        domain.RowCounts{},
			wantRows:    0,
			wantColumns: []string{},
		},
		{
			name:        "blank lines before header",
			text:        "\n \norder_id,sku\n1,A\n",
			want:        domain.RowCounts{Total: 1, Sanitised: 1, Valid: 1, Usable: 1},
			wantRows:    1,
			wantColumns: []string{"order_id", "sku"},
			wantClasses: []RowClass{RowGood},
		},
		{
			name:        "header only",
			text:        "col1,col2,col3\n",
			want:        domain.RowCounts{},
			wantRows:    0,
			wantColumns: []string{"col1", "col2", "col3"},
			wantClasses: []RowClass{},
		},
		{
			name:        "valid data",
			text:        "order_id,sku,item_price,item_tax\n1,A1,10.0,1.0\n2,B2,20.0,2.0",
			want:        domain.RowCounts{Total: 2, Sanitised: 2, Valid: 2, Usable: 2},
			wantRows:    2,
			wantColumns: []string{"order_id", "sku", "item_price", "item_tax"},
			wantClasses: []RowClass{RowGood, RowGood},
		},
		{
			name:        "blank rows",
			text:        "order_id,sku,item_price,item_tax\r\n1,A1,10.0,1.0\r\n\r\n2,B2,20.0,2.0\r\n , ,,\r\n3,C3,30.0,3.0\r\n",
			want:        domain.RowCounts{Total: 5, Blank: 2, Sanitised: 3, Valid: 3, Usable: 3},
			wantRows:    3,
			wantClasses: []RowClass{RowGood, RowBlank, RowGood, RowBlank, RowGood},
		},
		{
			name:        "structural errors",
			text:        "order_id,sku,item_price,item_tax\n1,A1,10.0,1.0\n2,B2,20.0\n3,C3,30.0,3.0,extra\n4,D4,40.0,4.0",
			want:        domain.RowCounts{Total: 4, StructuralErrors: 2, Sanitised: 2, Valid: 2, Usable: 2},
			wantRows:    2,
			wantClasses: []RowClass{RowGood, RowStructuralError, RowStructuralError, RowGood},
		},
		{
			name:        "quoting",
			text:        "order_id,sku,item_price,item_tax\n1,\"A,1\",10.0,1.0\n2,\"B2,20.0,2.0\n3,C\"3,30.0,3.0",
			want:        domain.RowCounts{Total: 3, StructuralErrors: 2, Sanitised: 1, Valid: 1, Usable: 1},
			wantRows:    1,
			wantClasses: []RowClass{RowGood, RowStructuralError, RowStructuralError},
		},
		{
			name:        "content errors",
			text:        "order_id,sku,item_price,item_tax\n1,A1,10.0,1.0\n2,B2,bad_price,2.0\n3,C3,30.0,3.0\n4,,40.0,4.0\n5,E5,50.0,invalid_tax\n",
			want:        domain.RowCounts{Total: 5, Malformed: 3, Sanitised: 5, Valid: 2, Usable: 2},
			wantRows:    5,
			wantClasses: []RowClass{RowGood, RowContentError, RowGood, RowContentError, RowContentError},
		},
		{
			name:        "duplicates by line item id",
			text:        "order_id,sku,item_price,item_tax,order_item_id\n1,A1,10.0,1.0,item1\n2,B2,20.0,2.0,item2\n1,A1,10.0,1.0,item1\n3,C3,30.0,3.0,item3\n2,B2,20.0,2.0,item2\n",
			want:        domain.RowCounts{Total: 5, Duplicated: 2, Sanitised: 5, Valid: 5, Usable: 3},
			wantRows:    5,
			wantClasses: []RowClass{RowGood, RowGood, RowDuplicate, RowGood, RowDuplicate},
		},
		{
			name:        "duplicates by order and sku",
			text:        "order_id,sku,item_price,item_tax\n1,A1,10.0,1.0\n2,B2,20.0,2.0\n1,A1,11.0,1.1\n3,C3,30.0,3.0\n2,B2,20.0,2.0\n",
			want:        domain.RowCounts{Total: 5, Duplicated: 2, Sanitised: 5, Valid: 5, Usable: 3},
			wantRows:    5,
			wantClasses: []RowClass{RowGood, RowGood, RowDuplicate, RowGood, RowDuplicate},
		},
		{
			name:        "no duplicate key",
			text:        "name,amount\nx,1\nx,1\n",
			want:        domain.RowCounts{Total: 2, Sanitised: 2, Valid: 2, Usable: 2},
			wantRows:    2,
			wantClasses: []RowClass{RowGood, RowGood},
		},
		{
			name:        "mixed issues",
			text:        "order_id,sku,item_price,item_tax,order_item_id\n1,A1,10.0,1.0,item1\n,,,,\n2,B2,invalid_price,2.0,item2\n1,A1,10.0,1.0,item1\n3,C3,30.0\n4,D4,40.0,4.0,item4\n",
			want:        domain.RowCounts{Total: 6, Blank: 1, StructuralErrors: 1, Malformed: 1, Duplicated: 1, Sanitised: 4, Valid: 3, Usable: 2},
			wantRows:    4,
			wantClasses: []RowClass{RowGood, RowBlank, RowContentError, RowDuplicate, RowStructuralError, RowGood},
		},
		{
			name:        "malformed duplicates floor usable at zero",
			text:        "order_id,sku,item_price,item_tax,order_item_id\n1,A1,x,1.0,item1\n1,A1,x,1.0,item1\n",
			want:        domain.RowCounts{Total: 2, Malformed: 2, Duplicated: 1, Sanitised: 2, Valid: 0, Usable: 0},
			wantRows:    2,
			wantClasses: []RowClass{RowContentError, RowContentError},
		},
	}

	c := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			require.NotNil(t, res.Table)

			assert.Equal(t, tt.want, res.Rows)
			assert.Equal(t, tt.wantRows, res.Table.Len())
			if tt.wantColumns != nil {
				assert.Equal(t, tt.wantColumns, res.Table.Columns())
			}
			if tt.wantClasses != nil {
				assert.Equal(t, tt.wantClasses, res.Classes)
			}
		})
	}
}

func TestClassifier_HeaderParseError(t *testing.T) {
	c := newTestClassifier()

	res, err := c.Classify(context.Background(), "order_id,\"sku\n1,A1\n2,B2\n")
	require.Error(t, err)

	var parseErr *StructuralParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 0, parseErr.Line)

	require.NotNil(t, res)
	assert.Equal(t, domain.RowCounts{StructuralErrors: 2}, res.Rows)
	assert.Equal(t, 0, res.Table.Len())
	assert.Empty(t, res.Table.Columns())

	t.Run("after blank lines", func(t *testing.T) {
		res, err := c.Classify(context.Background(), "\n\norder_id,\"sku\n1,A1\n")
		require.Error(t, err)

		var parseErr *StructuralParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 2, parseErr.Line)
		assert.Equal(t, domain.RowCounts{StructuralErrors: 1}, res.Rows)
	})
}

func TestClassifier_Invariants(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"\norder_id,sku\n1,A\n",
		"a,b\n",
		"order_id,sku,item_price\n1,A,1\n\n1,A,1\n2,,x\n3,B\n\"4,C,2\n",
		"order_item_id,item_price,item_tax\nx,1,1\nx,1,1\nx,1,1\ny,,1\n , , \n",
		"Order ID,Order ID,Price\n1,2,3\n1,2,3\n",
	}

	c := newTestClassifier()
	for _, text := range inputs {
		res, err := c.Classify(context.Background(), text)
		require.NoError(t, err)

		rows := res.Rows
		assert.Equal(t, rows.Total-rows.Blank-rows.StructuralErrors, rows.Sanitised, "input %q", text)
		assert.Equal(t, rows.Sanitised-rows.Malformed, rows.Valid, "input %q", text)
		assert.Equal(t, max(0, rows.Valid-rows.Duplicated), rows.Usable, "input %q", text)
		assert.Equal(t, rows.Sanitised, res.Table.Len(), "input %q", text)
		assert.Len(t, res.Classes, rows.Total, "input %q", text)

		outcome := domain.OutcomeFor(rows)
		assert.Equal(t, rows.Usable, outcome.Accepted)
		assert.Equal(t, rows.Blank+rows.Malformed+rows.Duplicated, outcome.Rejected)
	}
}

func TestClassifier_NormalizesHeader(t *testing.T) {
	c := newTestClassifier()

	res, err := c.Classify(context.Background(), "Order ID,Product SKU,,Product SKU\n1,A,x,B\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"order_id", "product_sku", "unnamed_0", "product_sku_0"}, res.Table.Columns())

	col, ok := res.Table.Column("product_sku_0")
	require.True(t, ok)
	assert.Equal(t, "B", res.Table.Value(0, col))
}

func TestRowClass_String(t *testing.T) {
	assert.Equal(t, "good", RowGood.String())
	assert.Equal(t, "blank", RowBlank.String())
	assert.Equal(t, "structural_error", RowStructuralError.String())
	assert.Equal(t, "content_error", RowContentError.String())
	assert.Equal(t, "duplicate", RowDuplicate.String())
}
