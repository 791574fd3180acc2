package attendance

import (
	"sort"
	"time"

	"linetrack-backend/internal/platform/fields"
)

// GeoVictoria attendance book shape:
//
//	{"Users":[{"PlannedInterval":[{"Date":"20240301000000","Punches":[{"Date":"20240301081500","Type":"Entrada"}],
//	  "WorkedHours":"08:30","Delay":"00:10","Worked":"True","Absent":"False"}]}]}
var (
	usersKeys        = []string{"Users"}
	intervalKeys     = []string{"PlannedInterval"}
	intervalDateKeys = []string{"Date", "IntervalDate"}
	punchListKeys    = []string{"Punches", "Punch"}
	punchTimeKeys    = []string{"Date", "PunchDate", "Time"}
	punchTypeKeys    = []string{"Type", "ShiftPunchType", "PunchType"}
	workedHoursKeys  = []string{"WorkedHours"}
	delayKeys        = []string{"Delay"}
	workedFlagKeys   = []string{"Worked"}
	absentFlagKeys   = []string{"Absent"}
	bookEnvelopeKeys = []string{"data"}
)

// bookIntervals returns Users[0].PlannedInterval when the payload has that structure.
// The structure is also looked for one level down, under "data".
func bookIntervals(payload any) ([]any, bool) {
	m, ok := fields.Object(payload)
	if !ok {
		return nil, false
	}
	if users, ok := fields.Lookup(m, usersKeys...); ok {
		list, _ := fields.List(users)
		if len(list) == 0 {
			return nil, false
		}
		first, ok := fields.Object(list[0])
		if !ok {
			return nil, false
		}
		v, ok := fields.Lookup(first, intervalKeys...)
		if !ok {
			return nil, false
		}
		intervals, ok := fields.List(v)
		return intervals, ok
	}
	if inner, ok := fields.Lookup(m, bookEnvelopeKeys...); ok {
		return bookIntervals(inner)
	}
	return nil, false
}

// DecodeBook normalizes the nested attendance-book shape. detected reports whether the payload
// had the Users[0].PlannedInterval structure at all.
func DecodeBook(payload any, loc *time.Location) (days []Day, detected bool) {
	intervals, detected := bookIntervals(payload)
	if !detected {
		return nil, false
	}
	days = make([]Day, 0, len(intervals))
	for _, raw := range intervals {
		iv, ok := fields.Object(raw)
		if !ok {
			continue
		}
		if d, ok := decodeInterval(iv, loc); ok {
			days = append(days, d)
		}
	}
	return days, true
}

func decodeInterval(iv map[string]any, loc *time.Location) (Day, bool) {
	dv, ok := fields.Lookup(iv, intervalDateKeys...)
	if !ok {
		return Day{}, false
	}
	date, ok := ResolveDay(dv, loc)
	if !ok {
		return Day{}, false
	}

	d := Day{Date: date}
	d.Punches = decodePunches(iv, date, loc)
	if n := len(d.Punches); n > 0 {
		entry := d.Punches[0].Time
		exit := d.Punches[n-1].Time
		d.Entry, d.Exit = &entry, &exit
	}
	if v, ok := fields.Lookup(iv, workedHoursKeys...); ok {
		d.WorkedMinutes = ParseDurationMinutes(v)
	}
	if v, ok := fields.Lookup(iv, delayKeys...); ok {
		d.DelayMinutes = ParseDurationMinutes(v)
	}
	if v, ok := fields.Lookup(iv, workedFlagKeys...); ok {
		d.Worked = ParseFlag(v)
	}
	if v, ok := fields.Lookup(iv, absentFlagKeys...); ok {
		d.Absent = ParseFlag(v)
	}
	return d, true
}

// decodePunches returns the parsable punches in time order.
func decodePunches(iv map[string]any, date string, loc *time.Location) []Punch {
	v, ok := fields.Lookup(iv, punchListKeys...)
	if !ok {
		return nil
	}
	list, _ := fields.List(v)
	out := make([]Punch, 0, len(list))
	for _, raw := range list {
		p, ok := fields.Object(raw)
		if !ok {
			continue
		}
		tv, ok := fields.Lookup(p, punchTimeKeys...)
		if !ok {
			continue
		}
		t, ok := ParseFieldTime(tv, date, loc)
		if !ok {
			continue
		}
		punch := Punch{Time: t}
		if typ, ok := fields.Lookup(p, punchTypeKeys...); ok {
			punch.Type, _ = fields.String(typ)
		}
		out = append(out, punch)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
