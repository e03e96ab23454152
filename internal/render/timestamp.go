package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Timestamp layouts the upstream APIs are known to send.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// RelativeTime formats raw as "3 days ago | 01/02/2006 | 03:04:05 PM".
// Unparseable or empty input yields "Unknown".
func RelativeTime(raw string, now time.Time) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return "Unknown"
	}
	ago := humanize.RelTime(t, now, "ago", "from now")
	if ago == "now" {
		ago = "just now"
	}
	return ago + " | " + t.Format("01/02/2006 | 03:04:05 PM")
}
