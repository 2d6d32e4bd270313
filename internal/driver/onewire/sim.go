package onewire

import (
	"fmt"
	"path/filepath"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated sensor, reading a scriptable temperature.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	temp        float64
}

// NewSim creates a simulated sensor reading 21.5 degrees.
func NewSim(name string, cfg Config) *Sim {
	return &Sim{name: name, cfg: cfg, temp: 21.5}
}

func (d *Sim) Name() string { return d.name }

func (d *Sim) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{filepath.Join(sysfsRoot, d.cfg.ID)}}
}

func (d *Sim) Params() map[string]string {
	return map[string]string{"id": d.cfg.ID, "simulated": "true"}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	return nil
}

// SetTemperature scripts the reading.
func (d *Sim) SetTemperature(celsius float64) {
	d.temp = celsius
}

func (d *Sim) ReadTemperature() (float64, error) {
	if !d.initialized {
		return 0, fmt.Errorf("onewire %q: not initialized", d.name)
	}
	return d.temp, nil
}
