// pkg/model/result.go
package model

import "time"

// RunResult summarizes one pipeline run. The counts are reported for
// observability only; callers must not branch on them.
type RunResult struct {
	Accepted     int           // Records that passed all quality rules
	Rejected     int           // Records routed to the error log
	ErrorsLogged int           // Rows appended to the error log this run
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// NewRunResult initializes a result with the current start time
func NewRunResult() *RunResult {
	return &RunResult{StartTime: time.Now()}
}

// Complete stamps the end time and calculates duration
func (r *RunResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Total returns the size of the partitioned batch
func (r *RunResult) Total() int {
	return r.Accepted + r.Rejected
}
