package activity

import (
	"sort"
	"time"

	"linetrack-backend/internal/attendance"
)

// Aggregate folds tasks into per-day records keyed by completed_at, falling back to
// started_at. A task with neither timestamp parsable has no day and is skipped.
// Days are returned in first-seen order.
func Aggregate(tasks []TaskInstance, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[string]int)
	out := make([]Day, 0)

	for _, t := range tasks {
		start, hasStart := attendance.ParseTimestamp(t.StartedAt, loc)
		end, hasEnd := attendance.ParseTimestamp(t.CompletedAt, loc)

		var key string
		switch {
		case hasEnd:
			key = attendance.DayOf(end, loc)
		case hasStart:
			key = attendance.DayOf(start, loc)
		default:
			continue
		}

		i, ok := index[key]
		if !ok {
			out = append(out, Day{Date: key, Tasks: []TaskInstance{}})
			i = len(out) - 1
			index[key] = i
		}
		d := &out[i]
		d.Tasks = append(d.Tasks, t)
		d.ActiveSeconds += activeSeconds(t, start, hasStart, end, hasEnd)
		d.PausedSeconds += PausedSeconds(t)

		if hasStart && (d.FirstTaskStart == nil || start.Before(*d.FirstTaskStart)) {
			s := start
			d.FirstTaskStart = &s
		}
		if hasEnd && (d.LastTaskEnd == nil || end.After(*d.LastTaskEnd)) {
			e := end
			d.LastTaskEnd = &e
		}
	}
	return out
}

// activeSeconds prefers duration_minutes, else completed-started (negative gives 0)
func activeSeconds(t TaskInstance, start time.Time, hasStart bool, end time.Time, hasEnd bool) float64 {
	if t.DurationMinutes != nil {
		return *t.DurationMinutes * 60
	}
	if hasStart && hasEnd {
		if d := end.Sub(start); d >= 0 {
			return d.Seconds()
		}
	}
	return 0
}

func PausedSeconds(t TaskInstance) float64 {
	var sum float64
	for _, p := range t.Pauses {
		sum += p.DurationSeconds
	}
	return sum
}

// SortTasks returns a copy ordered by started_at. Tasks without a parsable start go last,
// keeping their relative order.
func SortTasks(tasks []TaskInstance, loc *time.Location) []TaskInstance {
	if loc == nil {
		loc = time.UTC
	}
	type keyed struct {
		t     TaskInstance
		start time.Time
		ok    bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		s, ok := attendance.ParseTimestamp(t.StartedAt, loc)
		ks[i] = keyed{t: t, start: s, ok: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].ok != ks[j].ok {
			return ks[i].ok
		}
		return ks[i].ok && ks[i].start.Before(ks[j].start)
	})
	out := make([]TaskInstance, len(ks))
	for i := range ks {
		out[i] = ks[i].t
	}
	return out
}
