package report

import "time"

// Incident is a maximal contiguous run of down heartbeats. Start and
// Duration are fixed at detection time; an ongoing incident is closed
// against the evaluation instant instead of an up beat.
type Incident struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	Ongoing  bool          `json:"ongoing"`
}

// PingSample is the latency measurement attached to a heartbeat,
// collected independently of its up/down status.
type PingSample struct {
	Time time.Time `json:"time"`
	Ping float64   `json:"ping"` // milliseconds
}

// Analysis is the detector's output for one monitor: incidents and
// ping samples, both in chronological order.
type Analysis struct {
	Incidents []Incident   `json:"incidents"`
	Pings     []PingSample `json:"pings"`
}

// Window names a trailing aggregation period.
type Window string

// Aggregation windows
const (
	Daily   Window = "Daily"
	Weekly  Window = "Weekly"
	Monthly Window = "Monthly"
)

// Windows lists the aggregation windows in report order.
var Windows = []Window{Daily, Weekly, Monthly}

// Length returns the trailing duration covered by the window.
func (w Window) Length() time.Duration {
	switch w {
	case Daily:
		return 24 * time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Summary holds the aggregated statistics for one window. AvgPing and
// MaxPing are nil when no ping sample fell inside the window.
type Summary struct {
	Count         int           `json:"count"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	Percentage    float64       `json:"percentage"` // downtime as % of window length, not clamped to 100
	AvgPing       *float64      `json:"avg_ping"`
	MaxPing       *float64      `json:"max_ping"`
}
