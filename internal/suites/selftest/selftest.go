// Package selftest registers the built-in framework self-test group.
// It exercises the assertion surface and the group hooks without
// touching any device, so it is runnable on every host including CI.
package selftest

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/check"
	"github.com/hilrig/hilrig/internal/rig"
)

func init() {
	rig.Register(Group())
}

// Group builds the self-test group. Exported so tests can run it on a
// private registry.
func Group() *rig.TestGroup {
	g := rig.NewGroup("Framework Selftest")
	g.SetSetup(func(e *rig.Engine) error {
		check.Info("selftest setup: no hardware required")
		return nil
	})
	g.AddTest(rig.NewSimpleTest("Assertion forms", testAssertionForms))
	g.AddTest(rig.NewSimpleTest("Outcome values", testOutcomeValues))
	g.AddTest(rig.NewTest("Engine counters", testEngineCounters))
	g.SetTeardown(func(e *rig.Engine) error {
		check.Info("selftest teardown")
		return nil
	})
	return g
}

// testAssertionForms reports one PASS per assertion primitive.
func testAssertionForms() error {
	check.Equal(5, 5)
	check.True(1+1 == 2)
	check.In("rig", "hilrig")
	check.In(3, []int{1, 2, 3})
	check.In("b", map[string]int{"a": 1, "b": 2})
	check.Info("assertion forms exercised")
	return nil
}

// testOutcomeValues checks that assertions describe themselves in the
// Outcome they return.
func testOutcomeValues() error {
	o := check.Equal("x", "x")
	check.True(o.Passed)
	check.Equal(check.KindEqual, o.Kind)

	info := check.Info("informational outcomes pass")
	check.True(info.Passed)
	return nil
}

// testEngineCounters verifies the counter invariant against the live
// engine the body runs under.
func testEngineCounters(e *rig.Engine) error {
	total, passed, failed := e.Totals()
	if total != passed+failed {
		return fmt.Errorf("counter invariant broken: %d != %d + %d", total, passed, failed)
	}
	check.True(total >= 0)
	return nil
}
