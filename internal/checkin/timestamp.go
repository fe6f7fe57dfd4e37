package checkin

import (
	"errors"
	"strings"
	"time"
)

// ErrBadTimestamp is returned for client timestamps that are not ISO-8601.
var ErrBadTimestamp = errors.New("timestamp is not ISO-8601")

// clientLayouts are the ISO-8601 shapes accepted from devices. Timestamps
// without an offset are what Python's isoformat() and most browsers emit.
var clientLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseClientTimestamp validates a device-declared send time. Blank input is
// reported as ok=false with no error since the field is optional.
func ParseClientTimestamp(s string) (t time.Time, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range clientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, ErrBadTimestamp
}
