package retrieval

import (
	"strings"
	"time"
)

// permissiveDateLayouts covers the date formats actually observed across
// PubMed's E-utilities XML, Atom/RSS feed entries, and generic web-search
// API responses. Tried in order; the first successful parse wins.
var permissiveDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006 Jan 02",
	"2006 Jan",
	"Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

// ParseDate attempts every known layout against raw, returning ok=false
// rather than an error when none match — a malformed date should not drop
// an otherwise-valid article (§4.6 edge case).
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range permissiveDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
