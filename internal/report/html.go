package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/Masterminds/sprig/v3"
)

//go:embed report.html.tmpl
var reportTemplate string

// HTMLSink buffers the entry stream and renders a standalone HTML
// report once the run finishes. Nothing is written if the run never
// reaches Finish (for example a panic before cleanup).
type HTMLSink struct {
	path    string
	log     *slog.Logger
	entries []Entry
	err     error
}

// NewHTMLSink creates an HTML sink writing to path.
func NewHTMLSink(path string, log *slog.Logger) *HTMLSink {
	if log == nil {
		log = slog.Default()
	}
	return &HTMLSink{path: path, log: log}
}

func (s *HTMLSink) WriteEntry(e Entry) {
	s.entries = append(s.entries, e)
}

func (s *HTMLSink) WriteRun(info RunInfo) {
	if err := s.render(info); err != nil {
		s.log.Error("rendering html report", "path", s.path, "error", err)
		s.err = err
		return
	}
	s.log.Info("html report written", "path", s.path)
}

// Close reports a render failure, if one happened.
func (s *HTMLSink) Close() error { return s.err }

type htmlGroup struct {
	Name    string
	Passed  int
	Failed  int
	Entries []Entry
}

type htmlData struct {
	Info      RunInfo
	Duration  time.Duration
	PassPct   string
	FailPct   string
	Groups    []htmlGroup
	Lifecycle []Entry
}

func (s *HTMLSink) render(info RunInfo) error {
	tmpl, err := template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := tmpl.Execute(f, buildHTMLData(info, s.entries)); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

func buildHTMLData(info RunInfo, entries []Entry) htmlData {
	data := htmlData{
		Info:     info,
		Duration: info.Finished.Sub(info.Started).Round(time.Millisecond),
		PassPct:  pct(info.Passed, info.Total),
		FailPct:  pct(info.Failed, info.Total),
	}

	// Group tables in first-seen order; identity-free entries go to the
	// lifecycle section.
	index := make(map[string]int)
	for _, e := range entries {
		if e.Group == "" && e.Test == "" {
			data.Lifecycle = append(data.Lifecycle, e)
			continue
		}
		i, ok := index[e.Group]
		if !ok {
			i = len(data.Groups)
			index[e.Group] = i
			data.Groups = append(data.Groups, htmlGroup{Name: e.Group})
		}
		g := &data.Groups[i]
		g.Entries = append(g.Entries, e)
		switch e.Level {
		case LevelPass:
			g.Passed++
		case LevelFail:
			g.Failed++
		}
	}
	return data
}

func pct(part, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
}
