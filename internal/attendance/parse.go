package attendance

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"linetrack-backend/internal/platform/fields"
)

var (
	compactRe  = regexp.MustCompile(`^\d{8}(\d{6})?$`)
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	durationRe = regexp.MustCompile(`^([+-])?(\d{1,3}):(\d{2})(?::(\d{2}))?$`)
)

// naive layouts are read in the configured location; zoned ones are converted into it.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		DateLayout,
	}
)

// ParseTimestamp reads a full timestamp: compact YYYYMMDD / YYYYMMDDHHMMSS or a general
// date/time string. Bare clock times are not accepted here, see ParseClockOn.
func ParseTimestamp(v any, loc *time.Location) (time.Time, bool) {
	s, ok := fields.String(v)
	if !ok {
		return time.Time{}, false
	}
	if t, ok := parseCompact(s, loc); ok {
		return t, true
	}
	return parseGeneral(s, loc)
}

func parseCompact(s string, loc *time.Location) (time.Time, bool) {
	if !compactRe.MatchString(s) {
		return time.Time{}, false
	}
	layout := "20060102"
	if len(s) == 14 {
		layout = "20060102150405"
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseGeneral(s string, loc *time.Location) (time.Time, bool) {
	s = strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	if len(s) >= 10 && s[4] == '/' && s[7] == '/' {
		s = s[:4] + "-" + s[5:7] + "-" + s[8:]
	}
	for _, l := range zonedLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, l := range naiveLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClockOn combines a bare "HH:MM[:SS]" with a YYYY-MM-DD day.
func ParseClockOn(day string, v any, loc *time.Location) (time.Time, bool) {
	s, ok := fields.String(v)
	if !ok {
		return time.Time{}, false
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, day, loc)
	if err != nil {
		return time.Time{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mi > 59 || sec > 59 {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, mi, sec, 0, loc), true
}

// ParseFieldTime accepts anything a flat row may carry in a time column: full timestamps first,
// then a bare clock on the given day (skipped when day is empty).
func ParseFieldTime(v any, day string, loc *time.Location) (time.Time, bool) {
	if t, ok := ParseTimestamp(v, loc); ok {
		return t, true
	}
	if day == "" {
		return time.Time{}, false
	}
	return ParseClockOn(day, v, loc)
}

// DayOf formats t as a calendar day in loc.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ResolveDay turns a date-ish value into YYYY-MM-DD.
func ResolveDay(v any, loc *time.Location) (string, bool) {
	t, ok := ParseTimestamp(v, loc)
	if !ok {
		return "", false
	}
	return DayOf(t, loc), true
}

// ParseDurationMinutes reads "HH:MM[:SS]" (optionally signed) or a plain number of minutes.
func ParseDurationMinutes(v any) *float64 {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if m := durationRe.FindStringSubmatch(s); m != nil {
			h, _ := strconv.Atoi(m[2])
			mi, _ := strconv.Atoi(m[3])
			sec := 0
			if m[4] != "" {
				sec, _ = strconv.Atoi(m[4])
			}
			if mi > 59 || sec > 59 {
				return nil
			}
			total := float64(h*60+mi) + float64(sec)/60
			if m[1] == "-" {
				total = -total
			}
			return &total
		}
	}
	if f, ok := fields.Number(v); ok {
		return &f
	}
	return nil
}

// ParseFlag accepts true and "true" in any casing.
func ParseFlag(v any) *bool {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		switch {
		case strings.EqualFold(strings.TrimSpace(x), "true"):
			b = true
		case strings.EqualFold(strings.TrimSpace(x), "false"):
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}
