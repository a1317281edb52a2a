// FILE: logship/src/internal/format/format.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"logship/src/internal/core"

	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// eventTime layouts accepted for audit records, most specific first
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeLine turns one source line into an entry. JSON objects are kept as
// structured fields, anything else is wrapped as a text message. Objects are
// re-serialized so lenient input such as raw control characters is escaped.
// An object that is still not strict JSON, e.g. one holding NaN, stays text.
func DecodeLine(line string) core.LogEntry {
	entry := core.LogEntry{RawSize: int64(len(line)) + core.EntryOverheadSize}

	p := parserPool.Get()
	v, err := p.Parse(line)
	if err == nil && v.Type() == fastjson.TypeObject {
		if fields := v.MarshalTo(nil); json.Valid(fields) {
			entry.Fields = fields
		}
	}
	parserPool.Put(p)

	if entry.Fields == nil {
		entry.Message = line
	}
	return entry
}

// FlattenCloudTrail explodes the Records array of an audit document into one
// entry per event, each carrying a "timestamp" field in POSIX seconds derived
// from its eventTime. A single unparsable eventTime fails the whole document.
func FlattenCloudTrail(doc []byte) ([]core.LogEntry, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(doc)
	if err != nil {
		return nil, fmt.Errorf("parse CloudTrail document: %w", err)
	}

	recordsVal := v.Get("Records")
	if recordsVal == nil || recordsVal.Type() != fastjson.TypeArray {
		return nil, core.ErrMissingRecords
	}
	records, _ := recordsVal.Array()

	var arena fastjson.Arena
	entries := make([]core.LogEntry, 0, len(records))
	for i, rec := range records {
		if rec.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("record %d is not an object: %w", i, core.ErrInvalidEventTime)
		}

		ts, err := ParseEventTime(string(rec.GetStringBytes("eventTime")))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		rec.Set("timestamp", arena.NewNumberInt(int(ts)))
		fields := rec.MarshalTo(nil)

		entries = append(entries, core.LogEntry{
			Fields:    fields,
			Timestamp: ts,
			RawSize:   int64(len(fields)) + core.EntryOverheadSize,
		})
	}

	return entries, nil
}

// ParseEventTime converts an RFC 3339 or ISO-8601 timestamp to POSIX seconds.
// Values without a zone are read as UTC.
func ParseEventTime(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing eventTime: %w", core.ErrInvalidEventTime)
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("eventTime %q: %w", value, core.ErrInvalidEventTime)
}
