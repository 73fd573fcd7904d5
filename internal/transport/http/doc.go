// Package http implements the HTTP handlers of the order metrics service.
// Handlers parse and validate requests, call the service layer and map
// domain errors to RFC 7807 problem details.
//
// # Routes
//
//	POST /upload                                   ingest a CSV by URL
//	GET  /uploads/{file_id}/processing-stats       row classification summary
//	GET  /uploads/{file_id}/metrics?groupby=       monthly or yearly metrics
//	GET  /uploads/{file_id}/metrics/export         metrics as CSV or XLSX
//
// The same routes are mounted under /api/v1/order-items.
//
// # Error Mapping
//
//	validation failure            400 /errors/validation
//	short file id, bad groupby    400 /errors/validation
//	unknown file id               404 /errors/upload/not-found
//	download failure              502 /errors/upload/download-failed
//	undecodable text, bad header  422 /errors/upload/decode-failed, invalid-csv
//	missing purchased_date        422 /errors/metrics/missing-column
//
// # Testing
//
// Handlers depend on small service interfaces and are tested with
// testify/mock and httptest.
package http
