package sqlite

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash/v2"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// hashURL returns the xxhash-64 hex digest used as the result cache key.
func hashURL(url string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(url))
}

// compress brotli-encodes body. A nil body stays nil so negative entries
// store NULL.
func compress(body []byte) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress body: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress body: %w", err)
	}
	return body, nil
}
