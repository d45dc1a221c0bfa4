package ingest

import "time"

// FreshnessUnknown is the sentinel stored when a posting has no parsable
// publication timestamp. It sorts after every real value in the freshest-first
// queue, which is exactly where undatable postings belong.
const FreshnessUnknown = 999

// freshnessLayouts covers the ISO-8601-ish variants the scrapers emit.
var freshnessLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Freshness returns whole days elapsed between the posting's publication
// timestamp and now, in UTC, clamped at zero. Absent or malformed input
// yields FreshnessUnknown; this function never fails.
func Freshness(datePublished string, now time.Time) int {
	if datePublished == "" {
		return FreshnessUnknown
	}
	for _, layout := range freshnessLayouts {
		dt, err := time.Parse(layout, datePublished)
		if err != nil {
			continue
		}
		days := int(now.UTC().Sub(dt.UTC()).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return days
	}
	return FreshnessUnknown
}
