package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ColumnDirectory(t *testing.T) {
	table := tableOf(
		[]string{"order_id", "product_sku", "item_price", "shipping_price"},
		[]string{"1", "A", "10", "2"},
	)

	col, ok := table.Column("item_price")
	assert.True(t, ok)
	assert.Equal(t, 2, col)

	_, ok = table.Column("price")
	assert.False(t, ok)

	assert.Equal(t, []int{2, 3}, table.ColumnsContaining("price"))
	assert.Empty(t, table.ColumnsContaining("discount"))

	col, ok = table.FirstColumn("sku")
	assert.True(t, ok)
	assert.Equal(t, 1, col)

	row := table.Row(0)
	row[0] = "changed"
	assert.Equal(t, "1", table.Value(0, 0))
}
