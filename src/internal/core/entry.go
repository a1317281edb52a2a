// FILE: logship/src/internal/core/entry.go
package core

import "encoding/json"

// LogEntry is a single record read from the source object.
// Exactly one of Message or Fields is set: Fields holds a JSON object record
// (including flattened audit events), Message holds a plain text line.
type LogEntry struct {
	Message   string          `json:"message,omitempty"`
	Fields    json.RawMessage `json:"fields,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	RawSize   int64           `json:"-"`
}

// IsObject reports whether the entry is a structured JSON record.
func (e LogEntry) IsObject() bool {
	return len(e.Fields) > 0
}
