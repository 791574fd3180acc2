package attendance

import "time"

const DateLayout = "2006-01-02"

// Punch is one clock event.
type Punch struct {
	Time time.Time `json:"time"`
	Type string    `json:"type,omitempty"`
}

// Day is the canonical per-day attendance record. Entry and Exit come from the source as-is;
// Entry <= Exit is not guaranteed.
type Day struct {
	Date          string     `json:"date"` // YYYY-MM-DD
	Entry         *time.Time `json:"entry"`
	Exit          *time.Time `json:"exit"`
	LunchStart    *time.Time `json:"lunch_start"`
	LunchEnd      *time.Time `json:"lunch_end"`
	WorkedMinutes *float64   `json:"worked_minutes,omitempty"`
	DelayMinutes  *float64   `json:"delay_minutes,omitempty"`
	Worked        *bool      `json:"worked,omitempty"`
	Absent        *bool      `json:"absent,omitempty"`
	Punches       []Punch    `json:"punches,omitempty"`
}

// HasPunch reports whether either entry or exit is present.
func (d Day) HasPunch() bool { return d.Entry != nil || d.Exit != nil }

// Shape names the payload variant a result was decoded from.
type Shape string

const (
	ShapeNone Shape = "none"
	ShapeBook Shape = "book"
	ShapeFlat Shape = "flat"
)
