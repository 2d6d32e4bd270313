package check

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies an assertion primitive.
type Kind string

const (
	KindEqual Kind = "ASSERT_EQUAL"
	KindTrue  Kind = "ASSERT_TRUE"
	KindIn    Kind = "ASSERT_IN"
	KindFail  Kind = "FAIL_MESSAGE"
	KindInfo  Kind = "INFO_MESSAGE"
)

// Outcome is the symbolic result of one assertion: what was checked and
// how it came out. Every primitive returns an Outcome whether or not a
// context is live; with no context the call is pure and nothing is
// reported anywhere.
type Outcome struct {
	Kind     Kind
	Passed   bool
	Expected any
	Actual   any
	Message  string
}

// Equal checks expected against actual using deep equality. A live
// context receives a PASS result, or a FAIL carrying the standard
// assertion message.
func Equal(expected, actual any) Outcome {
	o := Outcome{Kind: KindEqual, Expected: expected, Actual: actual}
	o.Passed = reflect.DeepEqual(expected, actual)
	if !o.Passed {
		o.Message = fmt.Sprintf("Assertion failed! Expected = %v, actual = %v", expected, actual)
	}
	report(o)
	return o
}

// True checks that cond holds.
func True(cond bool) Outcome {
	o := Outcome{Kind: KindTrue, Expected: true, Actual: cond, Passed: cond}
	if !o.Passed {
		o.Message = "Assertion failed! Condition is false"
	}
	report(o)
	return o
}

// In checks that item occurs in collection: substring for strings,
// element for slices and arrays, key for maps.
func In(item, collection any) Outcome {
	o := Outcome{Kind: KindIn, Expected: collection, Actual: item, Passed: contains(item, collection)}
	if !o.Passed {
		o.Message = fmt.Sprintf("Assertion failed! %v not found in %v", item, collection)
	}
	report(o)
	return o
}

// Fail records an unconditional failure with msg as detail.
func Fail(msg string) Outcome {
	o := Outcome{Kind: KindFail, Passed: false, Message: msg}
	report(o)
	return o
}

// Info records an informational message against the current test. It
// never affects counters.
func Info(msg string) Outcome {
	o := Outcome{Kind: KindInfo, Passed: true, Message: msg}
	report(o)
	return o
}

func report(o Outcome) {
	if current == nil {
		return
	}
	if o.Kind == KindInfo {
		current.reporter.ReportInfo(current.group, current.test, o.Message)
		return
	}
	current.reporter.ReportResult(current.group, current.test, o.Passed, o.Message)
}

func contains(item, collection any) bool {
	if s, ok := collection.(string); ok {
		sub, ok := item.(string)
		return ok && strings.Contains(s, sub)
	}
	v := reflect.ValueOf(collection)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if reflect.DeepEqual(v.Index(i).Interface(), item) {
				return true
			}
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			if reflect.DeepEqual(key.Interface(), item) {
				return true
			}
		}
	}
	return false
}
