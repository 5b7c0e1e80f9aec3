package stats

import (
	"strings"
	"time"
)

// Layouts accepted for helpdesk timestamps, tried in order. Values without
// a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Empty or malformed text
// reports false.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// elapsed returns end-start when both parse and end is not before start.
func elapsed(startRaw, endRaw string) (time.Duration, bool) {
	start, ok := ParseTimestamp(startRaw)
	if !ok {
		return 0, false
	}
	end, ok := ParseTimestamp(endRaw)
	if !ok {
		return 0, false
	}
	if end.Before(start) {
		return 0, false
	}
	return end.Sub(start), true
}

// FormatDateTime renders a timestamp as "Jan 02, 2006 15:04". Empty input
// is "N/A"; unparseable input is returned as is.
func FormatDateTime(raw string) string {
	return formatTimestamp(raw, "Jan 02, 2006 15:04")
}

// FormatDate renders a timestamp as "Jan 02, 2006".
func FormatDate(raw string) string {
	return formatTimestamp(raw, "Jan 02, 2006")
}

func formatTimestamp(raw, layout string) string {
	if raw == "" {
		return NotAvailable
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(layout)
}
