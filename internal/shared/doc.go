// Package shared holds code used across the ordermetrics codebase that does
// not belong to any domain or architectural layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - NewTestLogger, a slog logger backed by BufferedSlogHandler so tests can
//     assert on emitted records and attributes
//   - Sample order item rows and an OrderItemsCSV builder for classifier,
//     service and handler tests
//   - NewCSVServer, an httptest server that serves a fixed CSV body
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    srv := testutil.NewCSVServer(t, []byte(testutil.SampleOrderItemsCSV()))
//
//	    // exercise code with logger and srv.URL
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// This package must not contain business logic and must not import other
// internal packages.
package shared
