// Package domain defines the check-in record and its persisted shapes.
// These types are shared by the builder, the record stores and the HTTP layer.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for receivedAt (and for sentAt
// when the client did not declare one). Microsecond precision keeps records
// written within the same second ordered.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// UnknownValue is stored when a label or device cannot be resolved.
const UnknownValue = "unknown"

// ErrMalformedRecord is returned when a stored document cannot be decoded.
var ErrMalformedRecord = errors.New("malformed record")

// Record is the immutable representation of one check-in event.
type Record struct {
	Code       string `json:"code"`
	UserLabel  string `json:"userLabel"`
	Device     string `json:"device"`
	SentAt     string `json:"sentAt"`
	ReceivedAt string `json:"receivedAt"`
	OnTime     bool   `json:"onTime"`
}

// ReceivedTime parses ReceivedAt.
func (r Record) ReceivedTime() (time.Time, error) {
	t, err := time.Parse(TimestampLayout, r.ReceivedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: receivedAt %q", ErrMalformedRecord, r.ReceivedAt)
	}
	return t, nil
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }

// EncodeRecord renders r as a human-readable document: two-space indentation,
// non-ASCII and HTML characters kept verbatim, trailing newline.
func EncodeRecord(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRecord parses a stored document. A document without a receivedAt is
// rejected since it cannot be ordered.
func DecodeRecord(raw []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if r.ReceivedAt == "" {
		return Record{}, fmt.Errorf("%w: missing receivedAt", ErrMalformedRecord)
	}
	return r, nil
}
