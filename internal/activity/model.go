package activity

import "time"

type Pause struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// TaskInstance is one completed task from the production-tracking history endpoint.
// Timestamps are kept as received; parse failures surface as zero contributions, not errors.
type TaskInstance struct {
	ID              string   `json:"task_instance_id"`
	StartedAt       string   `json:"started_at,omitempty"`
	CompletedAt     string   `json:"completed_at,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
	Pauses          []Pause  `json:"pauses"`
}

// Day aggregates the tasks whose day key (completed_at, else started_at) is Date.
// Tasks keep fetch order; use SortTasks for display order.
type Day struct {
	Date           string         `json:"date"`
	Tasks          []TaskInstance `json:"tasks"`
	ActiveSeconds  float64        `json:"active_seconds"`
	PausedSeconds  float64        `json:"paused_seconds"`
	FirstTaskStart *time.Time     `json:"first_task_start"`
	LastTaskEnd    *time.Time     `json:"last_task_end"`
}

// HasActivity reports whether the day has at least one task.
func (d *Day) HasActivity() bool { return d != nil && len(d.Tasks) > 0 }
