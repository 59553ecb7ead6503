package items

import (
	"maps"
	"time"
)

// TimestampLayout is how created_at and updated_at are stored.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// DisplayLayout renders timestamps for people.
const DisplayLayout = "2006年01月02日 15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Format returns a copy of item with created_at_display and updated_at_display added
// for the timestamps it carries.
func Format(item Item) Item {
	formatted := maps.Clone(item)
	if formatted == nil {
		formatted = Item{}
	}
	for _, field := range []string{"created_at", "updated_at"} {
		if v, ok := formatted[field]; ok {
			if s, ok := v.(string); ok {
				formatted[field+"_display"] = FormatTimestamp(s)
			}
		}
	}
	return formatted
}

// FormatTimestamp renders an ISO 8601 timestamp with DisplayLayout. Values that do
// not parse are returned unchanged.
func FormatTimestamp(s string) string {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DisplayLayout)
		}
	}
	return s
}

func formatAll(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, Format(item))
	}
	return out
}
