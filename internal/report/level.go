package report

import "fmt"

// Level classifies a result entry. PASS and FAIL are test outcomes and
// feed the run counters; INFO, WARNING and ERROR are informational and
// never affect totals or exit status.
type Level int

const (
	LevelPass Level = iota
	LevelFail
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the bracketed tag spelling used in logs and reports.
func (l Level) String() string {
	switch l {
	case LevelPass:
		return "PASS"
	case LevelFail:
		return "FAIL"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel maps a tag back to its Level. Used when reading stored runs.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "PASS":
		return LevelPass, nil
	case "FAIL":
		return LevelFail, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
