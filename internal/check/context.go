// Package check provides the free-standing assertion primitives test
// bodies call without threading engine or test identity through their
// signatures. The identity travels in a single ambient slot that the
// engine sets immediately before invoking a body and clears on every
// exit path.
//
// Execution is strictly sequential, so the slot is a plain package
// variable: no two tests ever run concurrently, and the slot is never
// shared across goroutines.
package check

// Reporter receives results attributed to the currently running test.
// The engine implements it.
type Reporter interface {
	ReportResult(group, test string, passed bool, detail string)
	ReportInfo(group, test, message string)
}

type testContext struct {
	reporter Reporter
	group    string
	test     string
}

var current *testContext

// SetContext establishes the ambient test identity. Callers must pair
// it with a deferred ClearContext so the slot is empty on every exit
// path, exceptional or not.
func SetContext(r Reporter, group, test string) {
	current = &testContext{reporter: r, group: group, test: test}
}

// ClearContext removes the ambient identity.
func ClearContext() {
	current = nil
}

// Active reports whether an ambient context is live. Assertion calls
// without one evaluate purely and perform no I/O.
func Active() bool {
	return current != nil
}
