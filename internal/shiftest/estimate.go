package shiftest

import (
	"math"
	"time"

	"linetrack-backend/internal/attendance"
	"linetrack-backend/internal/upstream"
)

// AssignedWorkers returns the workers of a station in worker-list order. Either side of the
// assignment is enough.
func AssignedWorkers(st upstream.Station, workers []upstream.Worker) []upstream.Worker {
	listed := make(map[string]bool, len(st.WorkerIDs))
	for _, id := range st.WorkerIDs {
		listed[id] = true
	}
	out := make([]upstream.Worker, 0)
	for _, w := range workers {
		if listed[w.ID] || contains(w.StationIDs, st.ID) {
			out = append(out, w)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ResolveWorkerAttendance classifies one worker for the target date from its normalized
// attendance and the fetch error, if any.
func ResolveWorkerAttendance(w upstream.Worker, days []attendance.Day, date string, fetchErr error) WorkerAttendance {
	wa := WorkerAttendance{WorkerID: w.ID, Name: w.Name}
	switch {
	case !w.Linked():
		wa.State = StateUnlinked
	case fetchErr != nil:
		wa.State = StateError
		wa.Error = fetchErr.Error()
	default:
		d, ok := attendance.ForDate(days, date)
		if ok && d.HasPunch() {
			wa.State = StatePresent
			wa.Entry, wa.Exit = d.Entry, d.Exit
		} else {
			wa.State = StateMissing
		}
	}
	return wa
}

// EstimateStation derives the station shift from its workers' attendance on date.
func EstimateStation(st upstream.Station, workers []upstream.Worker, att []WorkerAttendance, date string, r Rules, loc *time.Location) StationShiftSummary {
	if loc == nil {
		loc = time.UTC
	}
	sum := StationShiftSummary{
		Station:          st,
		Workers:          workers,
		WorkerAttendance: att,
		AssignedCount:    len(workers),
		Status:           StatusNoShift,
	}
	if sum.Workers == nil {
		sum.Workers = []upstream.Worker{}
	}
	if sum.WorkerAttendance == nil {
		sum.WorkerAttendance = []WorkerAttendance{}
	}

	for _, wa := range att {
		if wa.State != StatePresent {
			continue
		}
		sum.PresentCount++
		if wa.Exit != nil && (sum.LastExit == nil || wa.Exit.After(*sum.LastExit)) {
			e := *wa.Exit
			sum.LastExit = &e
		}
	}
	if sum.PresentCount == 0 {
		return sum
	}

	day, err := time.ParseInLocation(attendance.DateLayout, date, loc)
	if err != nil {
		return sum
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), r.StartHour, r.StartMinute, 0, 0, loc)
	sum.EstimatedStart = &start

	if sum.LastExit == nil {
		sum.Status = StatusOpen
		return sum
	}
	end := sum.LastExit.Add(-r.ExitOffset)
	sum.EstimatedEnd = &end

	mins := int(math.Round(end.Sub(start).Minutes()))
	if mins <= 0 {
		// likely a bad punch
		sum.Status = StatusReview
		return sum
	}
	sum.ShiftMinutes = &mins
	sum.Status = StatusEstimated
	return sum
}

// PlanQuery picks the attendance query form for a target date: a back-window when the date
// is within window days of today, an explicit single-day range otherwise.
func PlanQuery(target, today string, window int) upstream.AttendanceQuery {
	explicit := upstream.AttendanceQuery{StartDate: target, EndDate: target}
	tg, err := time.Parse(attendance.DateLayout, target)
	if err != nil {
		return explicit
	}
	td, err := time.Parse(attendance.DateLayout, today)
	if err != nil {
		return explicit
	}
	diff := int(td.Sub(tg) / (24 * time.Hour))
	if diff < 0 || diff >= window {
		return explicit
	}
	return upstream.AttendanceQuery{Days: diff + 1}
}
