package shiftest

type EstimateResponse struct {
	Date     string                `json:"date"`
	Stations []StationShiftSummary `json:"stations"`
	Errors   SourceErrors          `json:"errors"`
}

type SourceErrors struct {
	Stations string `json:"stations,omitempty"`
	Workers  string `json:"workers,omitempty"`
}
