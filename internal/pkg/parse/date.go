package parse

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Date attempts permissive parsing of value, the way a spider handles the
// wide variety of date formats RSS/Atom feeds and HTML publish-date widgets
// use in the wild. Returns nil on failure instead of an error: callers
// treat an unparseable date as "unknown", not as a fatal condition.
func Date(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// DateWithLayout parses value using an explicit layout (e.g. a scraper
// config's date_format) before falling back to permissive parsing.
func DateWithLayout(value, layout string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if layout != "" {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return Date(value)
}
