package files

import (
	"fmt"
	"os"
)

// ReadLocal reads a CSV file from disk, refusing files larger than maxBytes.
// A maxBytes of zero disables the limit.
func ReadLocal(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	body, err := readLimited(f, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
