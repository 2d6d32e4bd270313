package rig

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/check"
)

// Func is a test body. It receives the engine for device access and
// reporting, and returns nil on success or an error describing the
// failure.
//
// Bodies come in two styles. Assertion-style bodies call check
// primitives, which report their own outcomes through the ambient
// context, and return nil; the engine adds nothing. Return-style bodies
// report nothing themselves and let the returned error (or nil) become
// the test's single outcome. Mixing the styles is allowed but each
// reported assertion counts as its own outcome.
type Func func(e *Engine) error

// Test is one named, immutable execution unit.
type Test struct {
	name string
	fn   Func
}

// NewTest creates a test from a named body.
func NewTest(name string, fn Func) *Test {
	return &Test{name: name, fn: fn}
}

// NewSimpleTest wraps a body that needs no engine access.
func NewSimpleTest(name string, fn func() error) *Test {
	return NewTest(name, func(*Engine) error { return fn() })
}

// Name returns the test's name.
func (t *Test) Name() string { return t.name }

// Run executes the body under an ambient reporting context and records
// the outcome. A body error (or panic) records exactly one failure with
// the message as detail. A nil return records exactly one pass, unless
// the body already reported outcomes itself.
func (t *Test) Run(e *Engine, group string) {
	before := e.resultCount
	err := t.invoke(e, group)
	if err != nil {
		e.ReportResult(group, t.name, false, err.Error())
		return
	}
	if e.resultCount == before {
		e.ReportResult(group, t.name, true, "")
	}
}

// invoke runs the body with the context set, clearing it on every exit
// path and converting panics into ordinary failures.
func (t *Test) invoke(e *Engine, group string) (err error) {
	check.SetContext(e, group, t.name)
	defer check.ClearContext()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.fn(e)
}
