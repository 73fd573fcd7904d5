// Package files fetches the raw bytes of CSV sources.
//
// Downloader performs a single bounded GET against an http or https URL.
// ReadLocal loads a file from disk for the command line tool. Both cap the
// number of bytes they accept.
//
// Example usage:
//
//	d := files.NewDownloader(cfg.Ingest, logger)
//	raw, err := d.Fetch(ctx, "https://example.com/orders.csv")
//	if err != nil {
//	    var transportErr *files.TransportError
//	    if errors.As(err, &transportErr) {
//	        // download failed, caller may retry
//	    }
//	}
package files
