package assistance

import (
	"math"
	"sort"

	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/attendance"
)

// MergeDays unions both series by date, most recent first. Attendance keys are seeded first;
// when a source repeats a date, its first entry is kept.
func MergeDays(att []attendance.Day, act []activity.Day) []CombinedDay {
	index := make(map[string]int, len(att)+len(act))
	out := make([]CombinedDay, 0, len(att)+len(act))

	for i := range att {
		d := att[i]
		if _, ok := index[d.Date]; ok {
			continue
		}
		index[d.Date] = len(out)
		out = append(out, CombinedDay{Date: d.Date, Attendance: &d})
	}
	for i := range act {
		d := act[i]
		j, ok := index[d.Date]
		if !ok {
			index[d.Date] = len(out)
			out = append(out, CombinedDay{Date: d.Date, Activity: &d})
			continue
		}
		if out[j].Activity == nil {
			out[j].Activity = &d
		}
	}

	// YYYY-MM-DD sorts chronologically as a string
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// PresenceOf resolves the on-site span for one day: attendance entry/exit, then worked
// minutes, then the activity span.
func PresenceOf(d CombinedDay) Presence {
	if a := d.Attendance; a != nil {
		if a.Entry != nil && a.Exit != nil && a.Exit.After(*a.Entry) {
			return Presence{Seconds: a.Exit.Sub(*a.Entry).Seconds(), Source: SourceGeoVictoria, OK: true}
		}
		if a.WorkedMinutes != nil && *a.WorkedMinutes > 0 {
			return Presence{Seconds: *a.WorkedMinutes * 60, Source: SourceGeoVictoria, OK: true}
		}
	}
	if a := d.Activity; a != nil && a.FirstTaskStart != nil && a.LastTaskEnd != nil {
		secs := a.LastTaskEnd.Sub(*a.FirstTaskStart).Seconds()
		if secs < 0 {
			secs = 0
		}
		return Presence{Seconds: secs, Source: SourceActivity, OK: true}
	}
	return Presence{Source: SourceNone}
}

// Reduce sums in whole milliseconds so the totals do not depend on input order.
func Reduce(days []CombinedDay) Totals {
	var t Totals
	var presence, active, paused int64
	for _, d := range days {
		if p := PresenceOf(d); p.OK {
			t.DaysPresent++
			presence += millis(p.Seconds)
		}
		if d.Activity != nil {
			if d.Activity.HasActivity() {
				t.DaysWithActivity++
			}
			active += millis(d.Activity.ActiveSeconds)
			paused += millis(d.Activity.PausedSeconds)
		}
	}
	t.PresenceSeconds = seconds(presence)
	t.ActiveSeconds = seconds(active)
	t.PausedSeconds = seconds(paused)
	return t
}

func millis(secs float64) int64 { return int64(math.Round(secs * 1000)) }

func seconds(ms int64) float64 { return float64(ms) / 1000 }
