package spi

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated SPI port. By default it behaves as a MISO-MOSI
// loopback (the transfer returns what was sent); tests may install a
// Respond hook to model a specific slave.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool

	// Respond, when set, computes the slave's reply to a transfer.
	Respond func(w []byte) []byte
}

// NewSim creates a simulated SPI device.
func NewSim(name string, cfg Config) *Sim {
	return &Sim{name: name, cfg: cfg}
}

func (d *Sim) Name() string { return d.name }

func (d *Sim) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Port}}
}

func (d *Sim) Params() map[string]string {
	return map[string]string{
		"port":      d.cfg.Port,
		"mode":      fmt.Sprintf("%d", d.cfg.Mode),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	return nil
}

func (d *Sim) Transfer(w []byte) ([]byte, error) {
	if !d.initialized {
		return nil, fmt.Errorf("spi %q: not initialized", d.name)
	}
	if d.Respond != nil {
		r := d.Respond(w)
		out := make([]byte, len(w))
		copy(out, r)
		return out, nil
	}
	return append([]byte(nil), w...), nil
}
