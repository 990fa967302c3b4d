package dataprocessing

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing date cells. The portal export
// is inconsistent about formats, so parsing is lenient; anything that
// matches no layout is treated as null rather than an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// parseDate leniently parses a date cell. Blank or unparseable cells
// return ok=false.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate renders a parsed date back into the canonical cell format.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
