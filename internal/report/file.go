package report

import (
	"fmt"
	"os"
)

// FileSink appends the uncolored line stream to a text log file. Write
// failures are remembered and surfaced once at Close so a full disk
// cannot abort a hardware run midway.
type FileSink struct {
	f   *os.File
	err error
}

// NewFileSink opens (or creates) the log file for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) WriteEntry(e Entry) {
	s.write(e.Line())
}

func (s *FileSink) WriteLine(line string) {
	s.write(line)
}

func (s *FileSink) write(line string) {
	if _, err := fmt.Fprintln(s.f, line); err != nil && s.err == nil {
		s.err = fmt.Errorf("write log file: %w", err)
	}
}

// Close closes the file and reports the first write failure, if any.
func (s *FileSink) Close() error {
	closeErr := s.f.Close()
	if s.err != nil {
		return s.err
	}
	return closeErr
}
