package dataprocessing

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"ordermetrics/pkg/contracts/domain"
)

// Delimiter is the only field separator the classifier understands
const Delimiter = ','

// RowClass is the single classification assigned to a data line
type RowClass int

const (
	RowGood RowClass = iota
	RowBlank
	RowStructuralError
	RowContentError
	RowDuplicate
)

func (c RowClass) String() string {
	switch c {
	case RowGood:
		return "good"
	case RowBlank:
		return "blank"
	case RowStructuralError:
		return "structural_error"
	case RowContentError:
		return "content_error"
	case RowDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// lineItemIDColumns are tried in order as the single-column duplicate key
var lineItemIDColumns = []string{"order_item_id", "line_item_id", "item_id"}

// Result is the outcome of classifying one CSV text
type Result struct {
	// Rows carries every count except EncodingErrors, which belongs to decoding
	Rows domain.RowCounts

	// Table holds all sanitised rows, including content errors and duplicates
	Table *Table

	// Classes has one entry per data line, in input order
	Classes []RowClass
}

// Classifier sorts CSV data lines into row classes and builds the cleaned table
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier. A nil logger falls back to slog.Default.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger.With(slog.String("component", "classifier"))}
}

// Classify parses text line by line. Leading whitespace-only lines are
// skipped and the first remaining line is the header; text with no such line
// is empty input.
//
// An unparsable header returns a *StructuralParseError together with a Result
// whose only non-zero count is StructuralErrors.
func (c *Classifier) Classify(ctx context.Context, text string) (*Result, error) {
	lines := splitLines(text)
	skipped := leadingBlankLines(lines)
	lines = lines[skipped:]
	if len(lines) == 0 {
		return &Result{Table: NewTable(nil)}, nil
	}

	header, err := parseLine(lines[0])
	if err != nil {
		remaining := len(lines) - 1
		c.logger.WarnContext(ctx, "header could not be parsed",
			slog.Int("remaining_lines", remaining),
			slog.String("error", err.Error()))
		return &Result{
			Rows:    domain.RowCounts{StructuralErrors: remaining},
			Table:   NewTable(nil),
			Classes: repeatClass(RowStructuralError, remaining),
		}, &StructuralParseError{Line: skipped, Err: err}
	}

	data := lines[1:]
	res := &Result{
		Table:   NewTable(NormalizeColumns(header)),
		Classes: make([]RowClass, len(data)),
	}
	res.Rows.Total = len(data)

	// positions in data of the rows appended to the table
	sanitised := make([]int, 0, len(data))

	for i, line := range data {
		fields, err := parseLine(line)
		switch {
		case err != nil:
			res.Classes[i] = RowStructuralError
			res.Rows.StructuralErrors++
		case isBlank(fields):
			res.Classes[i] = RowBlank
			res.Rows.Blank++
		case len(fields) != len(header):
			res.Classes[i] = RowStructuralError
			res.Rows.StructuralErrors++
		default:
			res.Classes[i] = RowGood
			res.Table.appendRow(fields)
			sanitised = append(sanitised, i)
		}
	}
	res.Rows.Sanitised = res.Table.Len()

	malformed := c.contentErrors(res.Table)
	duplicates := c.duplicates(res.Table)

	for row, line := range sanitised {
		switch {
		case malformed[row]:
			res.Classes[line] = RowContentError
			res.Rows.Malformed++
		case duplicates[row]:
			res.Classes[line] = RowDuplicate
		}
		if duplicates[row] {
			res.Rows.Duplicated++
		}
	}

	res.Rows.Valid = res.Rows.Sanitised - res.Rows.Malformed
	res.Rows.Usable = max(0, res.Rows.Valid-res.Rows.Duplicated)

	c.logger.DebugContext(ctx, "classified rows",
		slog.Int("total", res.Rows.Total),
		slog.Int("blank", res.Rows.Blank),
		slog.Int("structural_errors", res.Rows.StructuralErrors),
		slog.Int("malformed", res.Rows.Malformed),
		slog.Int("duplicated", res.Rows.Duplicated),
		slog.Int("usable", res.Rows.Usable))

	return res, nil
}

// contentErrors flags rows where a critical column is missing after coercion.
// Numeric critical columns contain "price" or "tax" in their name, text
// critical columns contain "id" or "sku". Numeric wins when both match.
func (c *Classifier) contentErrors(t *Table) []bool {
	var numeric, text []int
	for i, name := range t.columns {
		switch {
		case strings.Contains(name, "price") || strings.Contains(name, "tax"):
			numeric = append(numeric, i)
		case strings.Contains(name, "id") || strings.Contains(name, "sku"):
			text = append(text, i)
		}
	}

	flags := make([]bool, t.Len())
	for row := range flags {
		for _, col := range numeric {
			if _, ok := CoerceNumber(t.Value(row, col)); !ok {
				flags[row] = true
				break
			}
		}
		if flags[row] {
			continue
		}
		for _, col := range text {
			if CoerceText(t.Value(row, col)) == "" {
				flags[row] = true
				break
			}
		}
	}
	return flags
}

// duplicates flags every row whose key was already seen on an earlier row.
// Without a usable key column no row is a duplicate.
func (c *Classifier) duplicates(t *Table) []bool {
	key := duplicateKey(t)
	flags := make([]bool, t.Len())
	if key == nil {
		return flags
	}

	seen := make(map[string]struct{}, t.Len())
	for row := range flags {
		k := key(row)
		if _, dup := seen[k]; dup {
			flags[row] = true
			continue
		}
		seen[k] = struct{}{}
	}
	return flags
}

func duplicateKey(t *Table) func(row int) string {
	for _, name := range lineItemIDColumns {
		if col, ok := t.Column(name); ok {
			return func(row int) string {
				return strings.TrimSpace(t.Value(row, col))
			}
		}
	}

	orderCol, hasOrder := t.FirstColumn("order_id")
	skuCol, hasSKU := t.FirstColumn("sku")
	if !hasOrder || !hasSKU {
		return nil
	}
	return func(row int) string {
		// unit separator cannot appear in a single-line field
		return strings.TrimSpace(t.Value(row, orderCol)) + "\x1f" + strings.TrimSpace(t.Value(row, skuCol))
	}
}

// splitLines splits on \n, \r\n and \r. A trailing terminator adds no line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func leadingBlankLines(lines []string) int {
	n := 0
	for n < len(lines) && strings.TrimSpace(lines[n]) == "" {
		n++
	}
	return n
}

// parseLine reads one line as a single CSV record with quote support
func parseLine(line string) ([]string, error) {
	if line == "" {
		return []string{""}, nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err == io.EOF {
		return []string{""}, nil
	}
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func repeatClass(class RowClass, n int) []RowClass {
	classes := make([]RowClass, n)
	for i := range classes {
		classes[i] = class
	}
	return classes
}
