package attendance

import (
	"time"

	"linetrack-backend/internal/platform/fields"
)

// Normalize decodes a raw attendance payload of unknown shape. Malformed input gives an empty
// slice, never an error.
func Normalize(raw []byte, loc *time.Location) ([]Day, Shape) {
	return NormalizeValue(fields.Decode(raw), loc)
}

// NormalizeValue tries the attendance-book shape first. A non-empty book result is
// authoritative even if the same payload would also yield flat rows; an empty one falls
// through to the flat decoder.
func NormalizeValue(payload any, loc *time.Location) ([]Day, Shape) {
	if loc == nil {
		loc = time.UTC
	}
	if days, detected := DecodeBook(payload, loc); detected && len(days) > 0 {
		return days, ShapeBook
	}
	if days := DecodeFlat(payload, loc); len(days) > 0 {
		return days, ShapeFlat
	}
	return []Day{}, ShapeNone
}

// ForDate picks the record for one day. When several rows share the day, the first one with
// a punch wins, otherwise the first one.
func ForDate(days []Day, date string) (Day, bool) {
	var fallback *Day
	for i := range days {
		if days[i].Date != date {
			continue
		}
		if days[i].HasPunch() {
			return days[i], true
		}
		if fallback == nil {
			fallback = &days[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Day{}, false
}
