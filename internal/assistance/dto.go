package assistance

import (
	"linetrack-backend/internal/activity"
	"linetrack-backend/internal/attendance"
	"linetrack-backend/internal/upstream"
)

// WorkerAssistanceResponse is the assistance view for one worker.
type WorkerAssistanceResponse struct {
	Worker upstream.Worker `json:"worker"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Days   []DayDTO        `json:"days"`
	Totals Totals          `json:"totals"`
	Errors SourceErrors    `json:"errors"`
}

type DayDTO struct {
	Date            string          `json:"date"`
	Attendance      *attendance.Day `json:"attendance"`
	Activity        *activity.Day   `json:"activity"`
	PresenceSeconds *float64        `json:"presence_seconds"`
	PresenceSource  Source          `json:"presence_source"`
}

// SourceErrors carries a message only for the sources that failed.
type SourceErrors struct {
	Attendance string `json:"attendance,omitempty"`
	Activity   string `json:"activity,omitempty"`
}
