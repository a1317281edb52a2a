// FILE: logship/src/internal/format/compress.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// Encode returns the uncompressed wire form of a payload.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal([]Payload{p})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}

// Compress encodes the payload and gzips it at the default level.
func Compress(p Payload) ([]byte, error) {
	data, err := Encode(p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip payload: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("gzip payload: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureWithinLimit compresses p and, while the result is above limit, splits
// its logs in half and retries each half. Pieces keep log order. A payload
// holding a single log is returned as is even when oversized.
func EnsureWithinLimit(p Payload, limit int64) ([][]byte, error) {
	compressed, err := Compress(p)
	if err != nil {
		return nil, err
	}
	if int64(len(compressed)) <= limit || len(p.Logs) <= 1 {
		return [][]byte{compressed}, nil
	}

	mid := len(p.Logs) / 2
	lower, err := EnsureWithinLimit(p.slice(0, mid), limit)
	if err != nil {
		return nil, err
	}
	upper, err := EnsureWithinLimit(p.slice(mid, len(p.Logs)), limit)
	if err != nil {
		return nil, err
	}
	return append(lower, upper...), nil
}
