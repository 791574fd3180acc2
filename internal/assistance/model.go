package assistance

import (
	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/attendance"
)

// CombinedDay joins both sources for one date. Either side may be nil, never both.
type CombinedDay struct {
	Date       string          `json:"date"`
	Attendance *attendance.Day `json:"attendance"`
	Activity   *activity.Day   `json:"activity"`
}

// Source names where a day's presence came from.
type Source string

const (
	SourceGeoVictoria Source = "geovictoria"
	SourceActivity    Source = "activity"
	SourceNone        Source = "none"
)

type Presence struct {
	Seconds float64
	Source  Source
	OK      bool
}

type Totals struct {
	DaysPresent      int     `json:"days_present"`
	PresenceSeconds  float64 `json:"presence_seconds"`
	DaysWithActivity int     `json:"days_with_activity"`
	ActiveSeconds    float64 `json:"active_seconds"`
	PausedSeconds    float64 `json:"paused_seconds"`
}
