package rig

import (
	"time"

	"github.com/hilrig/hilrig/internal/report"
)

// Summary is the final aggregate of one run.
type Summary struct {
	RunID    string
	State    RunState
	Total    int
	Passed   int
	Failed   int
	Started  time.Time
	Finished time.Time
}

// Success reports whether the run passed: it finished without a fatal
// initialization error and without test failures.
func (s *Summary) Success() bool {
	return s.State == StatePassed
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// Info converts the summary to the report layer's run descriptor.
func (s *Summary) Info() report.RunInfo {
	return report.RunInfo{
		ID:       s.RunID,
		State:    s.State.String(),
		Total:    s.Total,
		Passed:   s.Passed,
		Failed:   s.Failed,
		Started:  s.Started,
		Finished: s.Finished,
	}
}
