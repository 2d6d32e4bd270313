package report

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI sequences for level highlighting, matching the framework's
// traditional console palette.
const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// ConsoleSink renders entries and presentation lines with level-based
// highlighting. Color is applied only when the writer is a terminal and
// NO_COLOR is unset.
type ConsoleSink struct {
	w     io.Writer
	color bool
}

// NewConsoleSink creates a console sink. A nil writer means stdout.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *ConsoleSink) WriteEntry(e Entry) {
	fmt.Fprintln(s.w, s.paint(e))
}

func (s *ConsoleSink) WriteLine(line string) {
	fmt.Fprintln(s.w, line)
}

func (s *ConsoleSink) Close() error { return nil }

func (s *ConsoleSink) paint(e Entry) string {
	line := e.Line()
	if !s.color {
		return line
	}
	switch e.Level {
	case LevelPass:
		return ansiGreen + line + ansiReset
	case LevelFail, LevelError:
		return ansiRed + line + ansiReset
	case LevelWarning:
		return ansiYellow + line + ansiReset
	case LevelInfo:
		return ansiCyan + line + ansiReset
	default:
		return line
	}
}
