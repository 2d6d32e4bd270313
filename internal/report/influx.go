package report

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxConfig describes the InfluxDB v2 endpoint for result metrics.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink writes one point per test outcome and one per finished run,
// for trend dashboards over repeated bench runs. Only PASS/FAIL entries
// become points; informational entries carry no measurement value.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	log    *slog.Logger
}

// NewInfluxSink creates an Influx sink. The connection is lazy; a dead
// endpoint surfaces as logged write failures, not a startup error.
func NewInfluxSink(cfg InfluxConfig, log *slog.Logger) *InfluxSink {
	if log == nil {
		log = slog.Default()
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:    log,
	}
}

func (s *InfluxSink) WriteEntry(e Entry) {
	if e.Level != LevelPass && e.Level != LevelFail {
		return
	}
	p := influxdb2.NewPoint("hil_test_result",
		map[string]string{
			"group":  e.Group,
			"test":   e.Test,
			"status": e.Level.String(),
		},
		map[string]any{
			"passed": e.Level == LevelPass,
			"seq":    e.Seq,
		},
		e.Time)
	if err := s.write.WritePoint(context.Background(), p); err != nil {
		s.log.Warn("influx write", "measurement", "hil_test_result", "error", err)
	}
}

func (s *InfluxSink) WriteRun(info RunInfo) {
	p := influxdb2.NewPoint("hil_run",
		map[string]string{
			"state": info.State,
		},
		map[string]any{
			"run_id":      info.ID,
			"total":       info.Total,
			"passed":      info.Passed,
			"failed":      info.Failed,
			"duration_ms": info.Finished.Sub(info.Started).Milliseconds(),
		},
		info.Finished)
	if err := s.write.WritePoint(context.Background(), p); err != nil {
		s.log.Warn("influx write", "measurement", "hil_run", "error", err)
	}
}

// Close flushes and releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
