package pwm

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated PWM output: settings latch and read back.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	running     bool
}

// NewSim creates a simulated PWM device.
func NewSim(name string, cfg Config) *Sim {
	return &Sim{name: name, cfg: cfg}
}

func (d *Sim) Name() string { return d.name }

func (d *Sim) RequiredResources() device.Resources {
	return device.Resources{Pins: []int{d.cfg.Pin}}
}

func (d *Sim) Params() map[string]string {
	return map[string]string{
		"pin":       fmt.Sprintf("%d", d.cfg.Pin),
		"mode":      d.cfg.Mode,
		"frequency": fmt.Sprintf("%g", d.cfg.Frequency),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.running = false
	return nil
}

func (d *Sim) SetFrequency(hz float64) error {
	if !d.initialized {
		return fmt.Errorf("pwm %q: not initialized", d.name)
	}
	if hz <= 0 {
		return fmt.Errorf("pwm %q: frequency %g must be positive", d.name, hz)
	}
	d.cfg.Frequency = hz
	return nil
}

func (d *Sim) SetDuty(percent float64) error {
	if !d.initialized {
		return fmt.Errorf("pwm %q: not initialized", d.name)
	}
	if percent < 0 || percent > 100 {
		return fmt.Errorf("pwm %q: duty %g%% out of range", d.name, percent)
	}
	d.cfg.Duty = percent
	return nil
}

func (d *Sim) Start() error {
	if !d.initialized {
		return fmt.Errorf("pwm %q: not initialized", d.name)
	}
	d.running = true
	return nil
}

func (d *Sim) Stop() error {
	d.running = false
	return nil
}

// Running reports whether the simulated output is active.
func (d *Sim) Running() bool { return d.running }

// Frequency returns the current frequency setting.
func (d *Sim) Frequency() float64 { return d.cfg.Frequency }

// Duty returns the current duty-cycle setting in percent.
func (d *Sim) Duty() float64 { return d.cfg.Duty }
