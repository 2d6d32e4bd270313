package uart

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated serial port: a loopback where every sent byte is
// readable back, matching a bench jig with TX wired to RX.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	buf         []byte
}

// NewSim creates a simulated serial device.
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
		"baudrate":  fmt.Sprintf("%d", d.cfg.Baudrate),
		"simulated": "true",
	}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	d.buf = nil
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.buf = nil
	return nil
}

func (d *Sim) Send(data []byte) error {
	if !d.initialized {
		return fmt.Errorf("uart %q: not initialized", d.name)
	}
	d.buf = append(d.buf, data...)
	return nil
}

func (d *Sim) Recv(max int) ([]byte, error) {
	if !d.initialized {
		return nil, fmt.Errorf("uart %q: not initialized", d.name)
	}
	n := min(max, len(d.buf))
	out := append([]byte(nil), d.buf[:n]...)
	d.buf = d.buf[n:]
	return out, nil
}

func (d *Sim) Flush() error {
	if !d.initialized {
		return fmt.Errorf("uart %q: not initialized", d.name)
	}
	d.buf = nil
	return nil
}
