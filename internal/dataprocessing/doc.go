// Package dataprocessing turns raw order-item CSV text into a cleaned table and
// computes sales metrics over it.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Decoder: converts downloaded bytes to text using an ordered encoding list
// 2. Normalizer: maps raw header cells to unique snake_case column names
// 3. Classifier: sorts every data line into blank, structural error, content
// error, duplicate or good and builds the cleaned Table
// 4. Aggregator: groups a Table by month or year and sums the sales columns
//
// # Usage
//
//	text, err := dataprocessing.DecodeText(raw, dataprocessing.DefaultEncodings)
//	if err != nil {
//	    return err
//	}
//
//	result, err := dataprocessing.NewClassifier(logger).Classify(ctx, text)
//	if err != nil {
//	    return err
//	}
//
//	metrics, err := dataprocessing.NewAggregator(logger).Aggregate(ctx, result.Table, domain.GroupByMonth)
//
// # Data Flow
//
//	[]byte → Decoder → text → Classifier → Table + RowCounts → Aggregator → MetricsResult
//
// # Row Counts
//
// The classifier keeps the counts consistent:
//
//	sanitised = total - blank - structural_errors
//	valid     = sanitised - malformed
//	usable    = max(0, valid - duplicated)
//
// The returned Table holds every sanitised row. Content errors and duplicates
// only show up in the counts.
//
// # Coercion
//
// CoerceNumber and CoerceText are the single coercion contract. The classifier
// treats a failed number as a missing critical value, the aggregator treats it
// as zero.
package dataprocessing
