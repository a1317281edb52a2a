// FILE: logship/src/internal/format/payload.go
package format

import (
	"encoding/json"
	"fmt"
	"maps"

	"logship/src/internal/core"
	"logship/src/internal/version"
)

// Payload is one ingest envelope. It is sent as a one-element JSON array.
type Payload struct {
	Common Common            `json:"common"`
	Logs   []json.RawMessage `json:"logs"`
}

// Common holds the attributes shared by every log in the payload
type Common struct {
	Attributes map[string]any `json:"attributes"`
}

type messageRecord struct {
	Message string `json:"message"`
}

// Packager builds payloads for one invocation's configuration.
type Packager struct {
	logType    string
	additional map[string]any
}

// NewPackager creates a packager. Additional attributes win over the built-in
// ones on key collision.
func NewPackager(logType string, additional map[string]any) *Packager {
	return &Packager{
		logType:    logType,
		additional: maps.Clone(additional),
	}
}

// Package converts a batch into a payload. The result depends only on its
// inputs.
func (p *Packager) Package(batch core.Batch, inv core.Invocation) (Payload, error) {
	logs := make([]json.RawMessage, 0, len(batch.Entries))
	for i, entry := range batch.Entries {
		if entry.IsObject() {
			logs = append(logs, entry.Fields)
			continue
		}
		raw, err := json.Marshal(messageRecord{Message: entry.Message})
		if err != nil {
			return Payload{}, fmt.Errorf("encode log %d: %w", i, err)
		}
		logs = append(logs, raw)
	}

	return Payload{
		Common: Common{Attributes: p.attributes(inv)},
		Logs:   logs,
	}, nil
}

func (p *Packager) attributes(inv core.Invocation) map[string]any {
	attrs := map[string]any{
		"plugin": map[string]any{
			"type":    version.PluginType,
			"version": version.PluginVersion,
		},
		"aws": map[string]any{
			"invoked_function_arn": inv.FunctionARN,
			"s3_bucket_name":       inv.Bucket,
			"s3_key":               inv.Key,
		},
		"logtype": p.logType,
	}
	maps.Copy(attrs, p.additional)
	return attrs
}

// slice returns a payload sharing the attributes with a sub-range of logs
func (p Payload) slice(from, to int) Payload {
	return Payload{Common: p.Common, Logs: p.Logs[from:to]}
}
