package i2c

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated I2C peripheral: a byte-addressed register file
// where writes persist and unwritten registers read zero.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	regs        map[byte][]byte
}

// NewSim creates a simulated I2C device.
func NewSim(name string, cfg Config) *Sim {
	return &Sim{name: name, cfg: cfg}
}

func (d *Sim) Name() string { return d.name }

func (d *Sim) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Bus}}
}

func (d *Sim) Params() map[string]string {
	return map[string]string{
		"bus":       d.cfg.Bus,
		"address":   fmt.Sprintf("0x%02x", d.cfg.Address),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	d.regs = make(map[byte][]byte)
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.regs = nil
	return nil
}

func (d *Sim) ReadReg(reg byte, n int) ([]byte, error) {
	if !d.initialized {
		return nil, fmt.Errorf("i2c %q: not initialized", d.name)
	}
	out := make([]byte, n)
	copy(out, d.regs[reg])
	return out, nil
}

func (d *Sim) WriteReg(reg byte, data []byte) error {
	if !d.initialized {
		return fmt.Errorf("i2c %q: not initialized", d.name)
	}
	d.regs[reg] = append([]byte(nil), data...)
	return nil
}
