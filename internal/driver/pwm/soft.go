package pwm

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/hilrig/hilrig/internal/device"
)

// Software bit-bangs PWM on an ordinary GPIO line. Timing precision is
// whatever the scheduler gives; good enough for LEDs and servo jigs,
// not for anything that needs hardware-exact edges.
type Software struct {
	device.Logging
	name string
	cfg  Config
	chip string
	line *gpiocdev.Line
	stop chan struct{}
	done chan struct{}
}

// NewSoftware creates a software PWM output over the GPIO chardev.
func NewSoftware(name string, cfg Config) *Software {
	return &Software{name: name, cfg: cfg, chip: "gpiochip0"}
}

func (d *Software) Name() string { return d.name }

func (d *Software) RequiredResources() device.Resources {
	return device.Resources{Pins: []int{d.cfg.Pin}}
}

func (d *Software) Params() map[string]string {
	return map[string]string{
		"pin":       fmt.Sprintf("%d", d.cfg.Pin),
		"mode":      "software",
		"frequency": fmt.Sprintf("%g", d.cfg.Frequency),
	}
}

func (d *Software) Initialize() error {
	line, err := gpiocdev.RequestLine(d.chip, d.cfg.Pin,
		gpiocdev.WithConsumer("hilrig-pwm"), gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("request line %d on %s: %w", d.cfg.Pin, d.chip, err)
	}
	d.line = line
	return nil
}

func (d *Software) Release() error {
	if d.line == nil {
		return nil
	}
	if err := d.Stop(); err != nil {
		return err
	}
	err := d.line.Close()
	d.line = nil
	if err != nil {
		return fmt.Errorf("close line %d: %w", d.cfg.Pin, err)
	}
	return nil
}

func (d *Software) SetFrequency(hz float64) error {
	if hz <= 0 {
		return fmt.Errorf("pwm %q: frequency %g must be positive", d.name, hz)
	}
	if d.stop != nil {
		return fmt.Errorf("pwm %q: stop before changing frequency", d.name)
	}
	d.cfg.Frequency = hz
	return nil
}

func (d *Software) SetDuty(percent float64) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("pwm %q: duty %g%% out of range", d.name, percent)
	}
	if d.stop != nil {
		return fmt.Errorf("pwm %q: stop before changing duty", d.name)
	}
	d.cfg.Duty = percent
	return nil
}

// Start launches the toggle loop. The loop is the only place outside a
// vendor library where the framework runs a second goroutine; it never
// touches engine state.
func (d *Software) Start() error {
	if d.line == nil {
		return fmt.Errorf("pwm %q: not initialized", d.name)
	}
	if d.stop != nil {
		return nil
	}

	period := time.Duration(float64(time.Second) / d.cfg.Frequency)
	high := time.Duration(float64(period) * d.cfg.Duty / 100)
	low := period - high

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go func(line *gpiocdev.Line, stop, done chan struct{}) {
		defer close(done)
		for {
			if high > 0 {
				line.SetValue(1)
				if !sleepOrStop(high, stop) {
					return
				}
			}
			if low > 0 {
				line.SetValue(0)
				if !sleepOrStop(low, stop) {
					return
				}
			}
		}
	}(d.line, d.stop, d.done)
	return nil
}

// Stop halts the toggle loop and leaves the pin low.
func (d *Software) Stop() error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	d.stop = nil
	d.done = nil
	return d.line.SetValue(0)
}

func sleepOrStop(dur time.Duration, stop chan struct{}) bool {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	}
}
