package gpio

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated GPIO line. Writes latch and read back, so
// loopback-style suites pass without hardware.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	value       int

	// InitErr and ReleaseErr let tests script lifecycle failures.
	InitErr    error
	ReleaseErr error
}

// NewSim creates a simulated GPIO device.
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
		"direction": d.cfg.Direction,
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	if d.InitErr != nil {
		return d.InitErr
	}
	d.initialized = true
	d.value = d.cfg.Initial
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	return d.ReleaseErr
}

func (d *Sim) Direction() string { return d.cfg.Direction }

func (d *Sim) Write(value int) error {
	if !d.initialized {
		return fmt.Errorf("gpio %q: not initialized", d.name)
	}
	if d.cfg.Direction != "out" {
		return fmt.Errorf("gpio %q: pin %d is not configured as output", d.name, d.cfg.Pin)
	}
	if value != 0 && value != 1 {
		return fmt.Errorf("gpio %q: invalid level %d", d.name, value)
	}
	d.value = value
	return nil
}

func (d *Sim) Read() (int, error) {
	if !d.initialized {
		return 0, fmt.Errorf("gpio %q: not initialized", d.name)
	}
	return d.value, nil
}

func (d *Sim) Toggle() error {
	v, err := d.Read()
	if err != nil {
		return err
	}
	return d.Write(1 - v)
}
