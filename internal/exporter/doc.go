// Package exporter writes metrics reports as downloadable files.
//
// CSVWriter is the low level writer with UTF-8 BOM support for Excel.
// Exporter turns a domain.MetricsReport into CSV or XLSX, one row per period
// followed by a grand total row.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	w.Header().Set("Content-Type", exporter.ContentType(exporter.FormatXLSX))
//	err := exp.Export(w, exporter.FormatXLSX, report)
package exporter
