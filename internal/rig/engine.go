package rig

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hilrig/hilrig/internal/devman"
	"github.com/hilrig/hilrig/internal/report"
)

// Section banners framing the run phases on the console and in the log
// file.
const (
	bannerInit    = "=================== INITIALIZATION ==================="
	bannerTests   = "=================== TESTS EXECUTION ==================="
	bannerCleanup = "=================== CLEANING AFTER TESTS ==================="
	bannerSummary = "=================== TESTS RESULTS SUMMARY ==================="
)

// Engine is the top-level sequencer for one run. It owns the device
// manager, the result recorder, and the aggregate counters, and it is
// the Reporter assertions reach through the ambient context.
//
// An Engine runs once. State only moves forward; after Run returns the
// engine is terminal and a new run needs a new Engine.
type Engine struct {
	mgr *devman.Manager
	rec *report.Recorder
	now func() time.Time

	runID string
	state RunState

	total  int
	passed int
	failed int

	// resultCount mirrors total but exists for Test.Run's bookkeeping:
	// it answers "did this body report anything" via a before/after
	// delta.
	resultCount int

	started  time.Time
	finished time.Time
}

// New creates an Engine over a manager and recorder. now may be nil for
// wall clock time; tests inject a deterministic clock.
func New(mgr *devman.Manager, rec *report.Recorder, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		mgr:   mgr,
		rec:   rec,
		now:   now,
		runID: uuid.NewString(),
		state: StateNotStarted,
	}
}

// Manager returns the device manager, for device access from test
// bodies.
func (e *Engine) Manager() *devman.Manager { return e.mgr }

// Recorder returns the run's recorder.
func (e *Engine) Recorder() *report.Recorder { return e.rec }

// RunID returns the unique identifier of this run.
func (e *Engine) RunID() string { return e.runID }

// State returns the engine's current run state.
func (e *Engine) State() RunState { return e.state }

// Totals returns the aggregate counters. total == passed + failed holds
// at every observable moment.
func (e *Engine) Totals() (total, passed, failed int) {
	return e.total, e.passed, e.failed
}

// ReportResult records one test outcome: the counters grow, and a PASS
// or FAIL entry joins the stream. Every call is a distinct outcome;
// nothing deduplicates.
func (e *Engine) ReportResult(group, test string, passed bool, detail string) {
	e.total++
	e.resultCount++
	level := report.LevelFail
	if passed {
		e.passed++
		level = report.LevelPass
	} else {
		e.failed++
	}
	e.rec.Record(level, group, test, "", detail)
}

// ReportInfo records an informational entry against a test. Counters
// are not affected.
func (e *Engine) ReportInfo(group, test, message string) {
	e.rec.Record(report.LevelInfo, group, test, message, "")
}

// Run drives the three phases: initialization, group execution,
// cleanup. A fatal initialization error aborts before any test runs and
// is returned; the caller decides process exit. Cleanup is
// unconditional. The returned summary is always non-nil.
func (e *Engine) Run(groups []*TestGroup) (*Summary, error) {
	e.started = e.now()

	e.state = StateInitializing
	e.rec.Line(bannerInit)
	if err := e.mgr.InitializeAll(); err != nil {
		e.rec.Record(report.LevelError, "", "",
			fmt.Sprintf("During peripherals initialization an error occurred: %v. Aborting tests.", err), "")
		e.state = StateAborted
		e.finished = e.now()
		sum := e.summary()
		e.rec.Finish(sum.Info())
		return sum, fmt.Errorf("initialize peripherals: %w", err)
	}

	e.state = StateRunning
	e.rec.Line("")
	e.rec.Line(bannerTests)
	for _, g := range groups {
		g.Run(e)
	}

	e.state = StateCleaningUp
	e.rec.Line("")
	e.rec.Line(bannerCleanup)
	e.mgr.ReleaseAll()

	if e.failed > 0 {
		e.state = StateFailed
	} else {
		e.state = StatePassed
	}
	e.finished = e.now()

	e.printSummary()
	sum := e.summary()
	e.rec.Finish(sum.Info())
	return sum, nil
}

// printSummary renders the totals block. Side effect only; exit status
// is derived from the summary by the caller.
func (e *Engine) printSummary() {
	e.rec.Line("")
	e.rec.Line(bannerSummary)
	e.rec.Line(fmt.Sprintf("> Total Tests Run: %d", e.total))
	e.rec.Line(fmt.Sprintf("> Tests Passed: %d", e.passed))
	e.rec.Line(fmt.Sprintf("> Tests Failed: %d", e.failed))
	if e.failed == 0 {
		e.rec.Line("OVERALL STATUS: ✅ PASSED")
	} else {
		e.rec.Line("OVERALL STATUS: ❌ FAILED")
	}
}

func (e *Engine) summary() *Summary {
	return &Summary{
		RunID:    e.runID,
		State:    e.state,
		Total:    e.total,
		Passed:   e.passed,
		Failed:   e.failed,
		Started:  e.started,
		Finished: e.finished,
	}
}
