// Package i2c drives one address on an I2C bus through periph.io. The
// bus device file is the exclusive resource; two devices on the same
// bus must use distinct stanzas with distinct addresses, and the bus
// path conflict is intentional — the framework serializes bus access by
// ownership rather than locking.
package i2c

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/hilrig/hilrig/internal/device"
)

// Dev is the operation surface test bodies use.
type Dev interface {
	ReadReg(reg byte, n int) ([]byte, error)
	WriteReg(reg byte, data []byte) error
}

// Config is the decoded i2c stanza.
type Config struct {
	Bus     string // e.g. /dev/i2c-1 or "1"
	Address uint16
}

func init() {
	device.Register("i2c", func(spec device.Spec, simulate bool) (device.Device, error) {
		bus, err := spec.StrRequired("bus")
		if err != nil {
			return nil, err
		}
		addr, err := spec.IntRequired("address")
		if err != nil {
			return nil, err
		}
		cfg := Config{Bus: bus, Address: uint16(addr)}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is one I2C peripheral on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	bus  i2c.BusCloser
	dev  *i2c.Dev
}

// New creates an unopened I2C device.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Bus}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{
		"bus":     d.cfg.Bus,
		"address": fmt.Sprintf("0x%02x", d.cfg.Address),
	}
}

func (d *Device) Initialize() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(d.cfg.Bus)
	if err != nil {
		return fmt.Errorf("open i2c bus %s: %w", d.cfg.Bus, err)
	}
	d.bus = bus
	d.dev = &i2c.Dev{Bus: bus, Addr: d.cfg.Address}
	return nil
}

func (d *Device) Release() error {
	if d.bus == nil {
		return nil
	}
	err := d.bus.Close()
	d.bus, d.dev = nil, nil
	if err != nil {
		return fmt.Errorf("close i2c bus %s: %w", d.cfg.Bus, err)
	}
	return nil
}

func (d *Device) ReadReg(reg byte, n int) ([]byte, error) {
	if d.dev == nil {
		return nil, fmt.Errorf("i2c %q: not initialized", d.name)
	}
	buf := make([]byte, n)
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, fmt.Errorf("read reg 0x%02x: %w", reg, err)
	}
	if d.Verbose() {
		slog.Debug("i2c read", "device", d.name, "reg", reg, "bytes", n)
	}
	return buf, nil
}

func (d *Device) WriteReg(reg byte, data []byte) error {
	if d.dev == nil {
		return fmt.Errorf("i2c %q: not initialized", d.name)
	}
	if d.Verbose() {
		slog.Debug("i2c write", "device", d.name, "reg", reg, "bytes", len(data))
	}
	if err := d.dev.Tx(append([]byte{reg}, data...), nil); err != nil {
		return fmt.Errorf("write reg 0x%02x: %w", reg, err)
	}
	return nil
}
