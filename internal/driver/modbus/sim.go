package modbus

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated Modbus slave: sparse holding/input register and
// coil/discrete maps. Holding registers and coils are writable through
// the client surface; input registers and discrete inputs are scripted
// by tests.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool

	holding  map[uint16]uint16
	input    map[uint16]uint16
	coils    map[uint16]bool
	discrete map[uint16]bool
}

// NewSim creates a simulated Modbus device.
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
		"unit":      fmt.Sprintf("%d", d.cfg.UnitID),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	d.holding = make(map[uint16]uint16)
	d.input = make(map[uint16]uint16)
	d.coils = make(map[uint16]bool)
	d.discrete = make(map[uint16]bool)
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.holding, d.input, d.coils, d.discrete = nil, nil, nil, nil
	return nil
}

// SetInput scripts an input register value.
func (d *Sim) SetInput(addr, value uint16) {
	if d.input != nil {
		d.input[addr] = value
	}
}

// SetDiscrete scripts a discrete input.
func (d *Sim) SetDiscrete(addr uint16, on bool) {
	if d.discrete != nil {
		d.discrete[addr] = on
	}
}

func (d *Sim) ReadHolding(addr, quantity uint16) ([]uint16, error) {
	if !d.initialized {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	out := make([]uint16, quantity)
	for i := range out {
		out[i] = d.holding[addr+uint16(i)]
	}
	return out, nil
}

func (d *Sim) ReadInput(addr, quantity uint16) ([]uint16, error) {
	if !d.initialized {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	out := make([]uint16, quantity)
	for i := range out {
		out[i] = d.input[addr+uint16(i)]
	}
	return out, nil
}

func (d *Sim) WriteRegister(addr, value uint16) error {
	if !d.initialized {
		return fmt.Errorf("modbus %q: not initialized", d.name)
	}
	d.holding[addr] = value
	return nil
}

func (d *Sim) ReadCoils(addr, quantity uint16) ([]bool, error) {
	if !d.initialized {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	out := make([]bool, quantity)
	for i := range out {
		out[i] = d.coils[addr+uint16(i)]
	}
	return out, nil
}

func (d *Sim) WriteCoil(addr uint16, on bool) error {
	if !d.initialized {
		return fmt.Errorf("modbus %q: not initialized", d.name)
	}
	d.coils[addr] = on
	return nil
}

func (d *Sim) ReadDiscrete(addr, quantity uint16) ([]bool, error) {
	if !d.initialized {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	out := make([]bool, quantity)
	for i := range out {
		out[i] = d.discrete[addr+uint16(i)]
	}
	return out, nil
}
