// FILE: logship/src/internal/source/source.go
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// ObjectStore is the read side of an object storage backend
type ObjectStore interface {
	// Returns the stored size of the object in bytes
	Size(ctx context.Context, bucket, key string) (int64, error)

	// Opens the raw object body
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Contains statistics about an opened object
type SourceStats struct {
	Bucket   string
	Key      string
	Size     int64
	Lines    uint64
	Bytes    uint64
	OpenedAt time.Time
	Codec    string
}

// LineSource opens objects from a store and streams them line by line.
type LineSource struct {
	store   ObjectStore
	maxSize int64
	logger  *log.Logger
}

// NewLineSource creates a line source over the given store.
func NewLineSource(store ObjectStore, maxSize int64, logger *log.Logger) (*LineSource, error) {
	if store == nil {
		return nil, fmt.Errorf("object store cannot be nil")
	}
	if maxSize <= 0 {
		maxSize = core.MaxFileSize
	}
	return &LineSource{
		store:   store,
		maxSize: maxSize,
		logger:  logger,
	}, nil
}

// Open probes the object size and opens a decoded reader over its body.
// Objects above the size limit are rejected before any byte is read.
func (s *LineSource) Open(ctx context.Context, bucket, key string) (*ObjectReader, error) {
	size, err := s.store.Size(ctx, bucket, key)
	if err != nil {
		return nil, &core.SourceReadError{Bucket: bucket, Key: key, Err: err}
	}
	if size > s.maxSize {
		return nil, &core.ObjectTooLargeError{Bucket: bucket, Key: key, Size: size, Limit: s.maxSize}
	}

	body, err := s.store.Open(ctx, bucket, key)
	if err != nil {
		return nil, &core.SourceReadError{Bucket: bucket, Key: key, Err: err}
	}

	codec := codecFor(key)
	decoded, err := decompress(codec, body)
	if err != nil {
		body.Close()
		return nil, &core.SourceReadError{Bucket: bucket, Key: key, Err: err}
	}

	s.logger.Debug("msg", "Object opened",
		"component", "line_source",
		"bucket", bucket,
		"key", key,
		"size", size,
		"codec", codec)

	return &ObjectReader{
		bucket:   bucket,
		key:      key,
		size:     size,
		limit:    s.maxSize,
		codec:    codec,
		body:     body,
		decoded:  decoded,
		reader:   bufio.NewReaderSize(decoded, 64*1024),
		openedAt: time.Now(),
	}, nil
}

// ObjectReader yields the decoded lines of one object. Not safe for
// concurrent use.
type ObjectReader struct {
	bucket string
	key    string
	size   int64
	limit  int64
	codec  string

	body    io.ReadCloser
	decoded io.ReadCloser
	reader  *bufio.Reader

	openedAt time.Time
	lines    atomic.Uint64
	bytes    atomic.Uint64
}

// Next returns the next non-empty line without its terminator.
// It returns io.EOF once the object is exhausted.
func (r *ObjectReader) Next() (string, error) {
	for {
		line, err := r.reader.ReadBytes('\n')
		if len(line) > 0 {
			r.bytes.Add(uint64(len(line)))
			line = bytes.TrimSuffix(line, []byte("\n"))
			line = bytes.TrimSuffix(line, []byte("\r"))
			if len(line) > 0 {
				if !utf8.Valid(line) {
					return "", r.wrap(fmt.Errorf("line %d is not valid UTF-8", r.lines.Load()+1))
				}
				r.lines.Add(1)
				return string(line), nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", r.wrap(err)
		}
	}
}

// ReadAll returns the whole decoded object. Used for documents that are not
// line oriented. The decoded size is bounded by the object size limit.
func (r *ObjectReader) ReadAll() ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.reader, r.limit+1))
	if err != nil {
		return nil, r.wrap(err)
	}
	r.bytes.Add(uint64(len(data)))
	if int64(len(data)) > r.limit {
		return nil, &core.ObjectTooLargeError{Bucket: r.bucket, Key: r.key, Size: int64(len(data)), Limit: r.limit}
	}
	if !utf8.Valid(data) {
		return nil, r.wrap(fmt.Errorf("object is not valid UTF-8"))
	}
	return data, nil
}

// Close releases the decoder and the underlying body.
func (r *ObjectReader) Close() error {
	var errs []error
	if r.decoded != nil {
		errs = append(errs, r.decoded.Close())
	}
	if r.body != nil {
		errs = append(errs, r.body.Close())
	}
	return errors.Join(errs...)
}

// GetStats returns counters for the object read so far.
func (r *ObjectReader) GetStats() SourceStats {
	return SourceStats{
		Bucket:   r.bucket,
		Key:      r.key,
		Size:     r.size,
		Lines:    r.lines.Load(),
		Bytes:    r.bytes.Load(),
		OpenedAt: r.openedAt,
		Codec:    r.codec,
	}
}

func (r *ObjectReader) wrap(err error) error {
	return &core.SourceReadError{Bucket: r.bucket, Key: r.key, Err: err}
}
