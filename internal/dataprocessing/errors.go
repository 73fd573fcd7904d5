package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGroupBy is returned when the grouping unit is not month or year
var ErrInvalidGroupBy = errors.New("invalid groupby value")

// StructuralParseError reports that the header line could not be parsed
type StructuralParseError struct {
	Line int
	Err  error
}

func (e *StructuralParseError) Error() string {
	return fmt.Sprintf("could not parse header on line %d: %v", e.Line+1, e.Err)
}

func (e *StructuralParseError) Unwrap() error {
	return e.Err
}

// DecodeError reports that none of the candidate encodings could decode the input
type DecodeError struct {
	Attempted []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode file with any of the attempted encodings (%s), total encoding errors: %d",
		strings.Join(e.Attempted, ", "), len(e.Attempted))
}

// EncodingErrors is the number of encodings tried before giving up
func (e *DecodeError) EncodingErrors() int {
	return len(e.Attempted)
}

// SchemaError reports a column required for aggregation that the table lacks
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column '%s'", e.Column)
}
