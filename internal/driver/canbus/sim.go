package canbus

import (
	"fmt"
	"time"

	"go.einride.tech/can"

	"github.com/hilrig/hilrig/internal/device"
)

// Sim is the simulated CAN bus: transmitted frames queue and read back
// in order, matching an interface in loopback mode.
type Sim struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
	frames      []can.Frame
}

// NewSim creates a simulated CAN device.
func NewSim(name string, cfg Config) *Sim {
	return &Sim{name: name, cfg: cfg}
}

func (d *Sim) Name() string { return d.name }

func (d *Sim) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Iface}}
}

func (d *Sim) Params() map[string]string {
	return map[string]string{"iface": d.cfg.Iface, "simulated": "true"}
}

func (d *Sim) Initialize() error {
	d.initialized = true
	d.frames = nil
	return nil
}

func (d *Sim) Release() error {
	d.initialized = false
	d.frames = nil
	return nil
}

func (d *Sim) Send(id uint32, data []byte) error {
	if !d.initialized {
		return fmt.Errorf("can %q: not initialized", d.name)
	}
	if len(data) > can.MaxDataLength {
		return fmt.Errorf("can %q: payload %d exceeds %d bytes", d.name, len(data), can.MaxDataLength)
	}
	frame := can.Frame{ID: id, Length: uint8(len(data))}
	copy(frame.Data[:], data)
	d.frames = append(d.frames, frame)
	return nil
}

func (d *Sim) Recv(timeout time.Duration) (can.Frame, error) {
	if !d.initialized {
		return can.Frame{}, fmt.Errorf("can %q: not initialized", d.name)
	}
	if len(d.frames) == 0 {
		return can.Frame{}, fmt.Errorf("can %q: receive timeout after %s", d.name, timeout)
	}
	frame := d.frames[0]
	d.frames = d.frames[1:]
	return frame, nil
}
