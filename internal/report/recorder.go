package report

import (
	"errors"
	"log/slog"
	"time"
)

// Sink consumes result entries as they are recorded. Implementations
// must tolerate being called from exactly one goroutine; the run is
// strictly sequential so no sink needs internal locking.
type Sink interface {
	WriteEntry(e Entry)
	Close() error
}

// LineSink is implemented by sinks that also want the unleveled
// presentation lines: section banners, group headers, the summary block.
type LineSink interface {
	WriteLine(line string)
}

// RunSink is implemented by sinks that need the finished run to produce
// their output (HTML report, summary publication).
type RunSink interface {
	WriteRun(info RunInfo)
}

// RunInfo is the final aggregate handed to RunSink implementations once
// the run has completed or aborted.
type RunInfo struct {
	ID       string    `json:"id"`
	State    string    `json:"state"`
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Passed reports whether the run finished without test failures.
func (ri RunInfo) PassedAll() bool {
	return ri.Failed == 0
}

// Recorder owns the entry stream for one run and fans every record out
// to the attached sinks as it happens. Entries are retained in order so
// late consumers (HTML report, run store) can replay the full stream.
type Recorder struct {
	log     *slog.Logger
	now     func() time.Time
	seq     int64
	entries []Entry
	sinks   []Sink
}

// NewRecorder creates a Recorder. now may be nil, in which case wall
// clock time is used; tests inject a deterministic clock.
func NewRecorder(log *slog.Logger, now func() time.Time) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{log: log, now: now}
}

// Attach adds a sink. Sinks receive entries in attach order.
func (r *Recorder) Attach(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Record appends one entry to the stream and forwards it to every sink.
// The assigned entry is returned for callers that need the seq.
func (r *Recorder) Record(level Level, group, test, message, detail string) Entry {
	r.seq++
	e := Entry{
		Seq:     r.seq,
		Time:    r.now(),
		Level:   level,
		Group:   group,
		Test:    test,
		Message: message,
		Detail:  detail,
	}
	r.entries = append(r.entries, e)
	for _, s := range r.sinks {
		s.WriteEntry(e)
	}
	return e
}

// Line forwards a presentation line to sinks that accept them. Lines are
// not part of the entry stream and never reach the run store.
func (r *Recorder) Line(text string) {
	for _, s := range r.sinks {
		if ls, ok := s.(LineSink); ok {
			ls.WriteLine(text)
		}
	}
}

// Finish hands the completed run to every RunSink. Call once, after the
// last entry.
func (r *Recorder) Finish(info RunInfo) {
	for _, s := range r.sinks {
		if rs, ok := s.(RunSink); ok {
			rs.WriteRun(info)
		}
	}
}

// Entries returns the recorded stream in order. The slice is shared;
// callers must not mutate it.
func (r *Recorder) Entries() []Entry {
	return r.entries
}

// Close closes all sinks in attach order and joins their errors.
func (r *Recorder) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			r.log.Warn("closing report sink", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
