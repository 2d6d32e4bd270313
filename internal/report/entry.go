package report

import (
	"fmt"
	"time"
)

// Entry is one record in the append-only result stream. Seq is assigned
// by the Recorder and is strictly increasing within a run.
type Entry struct {
	Seq     int64     `json:"seq"`
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Group   string    `json:"group,omitempty"`
	Test    string    `json:"test,omitempty"`
	Message string    `json:"message,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// Line renders the entry in the plain text form used by the console and
// the log file:
//
//	[PASS] group -> test
//	[FAIL] group -> test: detail
//	[INFO] group, test: message
//	[ERROR] message
//
// Outcome entries join group and test with an arrow; informational
// entries keep the comma form. Entries without a group/test identity
// (manager and lifecycle messages) are tag plus message only.
func (e Entry) Line() string {
	tag := "[" + e.Level.String() + "]"

	if e.Group == "" && e.Test == "" {
		return tag + " " + e.Message
	}

	switch e.Level {
	case LevelPass, LevelFail:
		s := fmt.Sprintf("%s %s -> %s", tag, e.Group, e.Test)
		if e.Detail != "" {
			s += ": " + e.Detail
		}
		return s
	default:
		return fmt.Sprintf("%s %s, %s: %s", tag, e.Group, e.Test, e.Message)
	}
}
