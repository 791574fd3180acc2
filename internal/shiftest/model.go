package shiftest

import (
	"time"

	"linetrack-backend/internal/upstream"
)

type Status string

const (
	StatusNoShift   Status = "no-shift"
	StatusOpen      Status = "open"
	StatusReview    Status = "review"
	StatusEstimated Status = "estimated"
)

// State is a worker's attendance state on the target date.
type State string

const (
	StatePresent  State = "present"
	StateMissing  State = "missing"
	StateUnlinked State = "unlinked"
	StateError    State = "error"
)

type WorkerAttendance struct {
	WorkerID string     `json:"worker_id"`
	Name     string     `json:"name"`
	State    State      `json:"state"`
	Entry    *time.Time `json:"entry"`
	Exit     *time.Time `json:"exit"`
	Error    string     `json:"error,omitempty"`
}

// StationShiftSummary is the estimated shift of one station for one date.
// EstimatedStart is a fixed wall-clock time, not a punch.
type StationShiftSummary struct {
	Station          upstream.Station   `json:"station"`
	Workers          []upstream.Worker  `json:"workers"`
	WorkerAttendance []WorkerAttendance `json:"worker_attendance"`
	AssignedCount    int                `json:"assigned_count"`
	PresentCount     int                `json:"present_count"`
	LastExit         *time.Time         `json:"last_exit"`
	EstimatedStart   *time.Time         `json:"estimated_start"`
	EstimatedEnd     *time.Time         `json:"estimated_end"`
	ShiftMinutes     *int               `json:"shift_minutes"`
	Status           Status             `json:"status"`
}

// Rules holds the fixed start time and the offset before the last exit.
type Rules struct {
	StartHour   int
	StartMinute int
	ExitOffset  time.Duration
}

func DefaultRules() Rules {
	return Rules{StartHour: 8, StartMinute: 20, ExitOffset: 30 * time.Minute}
}
