package adc

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated converter. Channels read midscale unless a test
// sets them, so reference sanity checks pass without hardware.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	counts      []int
}

// NewSim creates a simulated converter.
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
		"channels":  fmt.Sprintf("%d", d.cfg.Channels),
		"reference": fmt.Sprintf("%g", d.cfg.Reference),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	d.counts = make([]int, d.cfg.Channels)
	for i := range d.counts {
		d.counts[i] = maxCount / 2
	}
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.counts = nil
	return nil
}

// SetChannel scripts the raw count a channel reads.
func (d *Sim) SetChannel(ch, count int) error {
	if !d.initialized {
		return fmt.Errorf("adc %q: not initialized", d.name)
	}
	if ch < 0 || ch >= d.cfg.Channels {
		return fmt.Errorf("adc %q: channel %d out of range", d.name, ch)
	}
	if count < 0 || count > maxCount {
		return fmt.Errorf("adc %q: count %d out of range", d.name, count)
	}
	d.counts[ch] = count
	return nil
}

func (d *Sim) ReadChannel(ch int) (int, error) {
	if !d.initialized {
		return 0, fmt.Errorf("adc %q: not initialized", d.name)
	}
	if ch < 0 || ch >= d.cfg.Channels {
		return 0, fmt.Errorf("adc %q: channel %d out of range", d.name, ch)
	}
	return d.counts[ch], nil
}

func (d *Sim) Voltage(ch int) (float64, error) {
	count, err := d.ReadChannel(ch)
	if err != nil {
		return 0, err
	}
	return float64(count) / maxCount * d.cfg.Reference, nil
}
