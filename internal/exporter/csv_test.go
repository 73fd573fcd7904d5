package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		wantBOM bool
		want    [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"period", "total_orders"},
				Records: [][]string{{"2023-01", "4"}, {"2023-02", "6"}},
			},
			want: [][]string{{"period", "total_orders"}, {"2023-01", "4"}, {"2023-02", "6"}},
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			wantBOM: true,
			want:    [][]string{{"a"}, {"1"}},
		},
		{
			name: "quoted field",
			options: WriteOptions{
				Records: [][]string{{"a,b", `say "hi"`}},
			},
			want: [][]string{{"a,b", `say "hi"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(nil).Write(&buf, tt.options))

			data := buf.Bytes()
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))

			records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCSVWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := NewCSVWriter(nil).WriteFile(path, WriteOptions{
		Headers: []string{"x"},
		Records: [][]string{{"1"}, {"2"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n2\n", string(data))
}
