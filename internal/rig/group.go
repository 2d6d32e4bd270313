package rig

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/check"
	"github.com/hilrig/hilrig/internal/report"
)

// Hook names used as the synthetic test identity while a group's setup
// or teardown runs.
const (
	setupName    = "Global Setup"
	teardownName = "Global Teardown"
)

// TestGroup is an ordered sequence of tests with optional setup and
// teardown hooks. Groups execute their tests in the order they were
// added.
type TestGroup struct {
	name     string
	tests    []*Test
	setup    Func
	teardown Func
}

// NewGroup creates an empty test group.
func NewGroup(name string) *TestGroup {
	return &TestGroup{name: name}
}

// Name returns the group's name.
func (g *TestGroup) Name() string { return g.name }

// AddTest appends a test to the group.
func (g *TestGroup) AddTest(t *Test) {
	g.tests = append(g.tests, t)
}

// Tests returns the group's tests in execution order.
func (g *TestGroup) Tests() []*Test { return g.tests }

// SetSetup installs the setup hook, run once before the group's tests.
func (g *TestGroup) SetSetup(fn Func) { g.setup = fn }

// SetTeardown installs the teardown hook, run once after the group's
// tests.
func (g *TestGroup) SetTeardown(fn Func) { g.teardown = fn }

// Run executes the group: setup (a failure is an ERROR entry, the tests
// still run), every test in order, then teardown (a failure is a
// WARNING entry and never affects totals or exit status).
func (g *TestGroup) Run(e *Engine) {
	e.rec.Line("")
	e.rec.Line(fmt.Sprintf("--- Running test group: '%s' ---", g.name))

	if g.setup != nil {
		if err := g.runHook(e, setupName, g.setup); err != nil {
			e.rec.Record(report.LevelError, g.name, setupName, fmt.Sprintf("setup failed: %v", err), "")
		}
	}

	for _, t := range g.tests {
		t.Run(e, g.name)
	}

	if g.teardown != nil {
		if err := g.runHook(e, teardownName, g.teardown); err != nil {
			e.rec.Record(report.LevelWarning, g.name, teardownName, fmt.Sprintf("teardown failed: %v", err), "")
		}
	}
}

// runHook executes a setup/teardown hook under its synthetic context.
// Hooks may use assertions like any body; a panic becomes an ordinary
// error for the caller to classify.
func (g *TestGroup) runHook(e *Engine, name string, fn Func) (err error) {
	check.SetContext(e, g.name, name)
	defer check.ClearContext()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(e)
}
