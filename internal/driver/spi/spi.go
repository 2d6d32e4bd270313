// Package spi drives a SPI port through periph.io. The port device
// file is the exclusive resource.
package spi

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/hilrig/hilrig/internal/device"
)

// Conn is the operation surface test bodies use: full-duplex transfer
// of one buffer, returning the bytes clocked back.
type Conn interface {
	Transfer(w []byte) ([]byte, error)
}

// Config is the decoded spi stanza.
type Config struct {
	Port string // e.g. /dev/spidev0.0
	Mode int    // SPI mode 0..3
	Hz   int64  // clock frequency
	Bits int    // bits per word
}

func init() {
	device.Register("spi", func(spec device.Spec, simulate bool) (device.Device, error) {
		port, err := spec.StrRequired("port")
		if err != nil {
			return nil, err
		}
		cfg := Config{
			Port: port,
			Mode: spec.Int("mode", 0),
			Hz:   int64(spec.Int("hz", 1_000_000)),
			Bits: spec.Int("bits", 8),
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is a SPI port on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	port spi.PortCloser
	conn spi.Conn
}

// New creates an unopened SPI device.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Port}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{
		"port": d.cfg.Port,
		"mode": fmt.Sprintf("%d", d.cfg.Mode),
		"hz":   fmt.Sprintf("%d", d.cfg.Hz),
	}
}

func (d *Device) Initialize() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(d.cfg.Port)
	if err != nil {
		return fmt.Errorf("open spi port %s: %w", d.cfg.Port, err)
	}
	conn, err := port.Connect(physic.Frequency(d.cfg.Hz)*physic.Hertz, spi.Mode(d.cfg.Mode), d.cfg.Bits)
	if err != nil {
		port.Close()
		return fmt.Errorf("connect spi port %s: %w", d.cfg.Port, err)
	}
	d.port = port
	d.conn = conn
	return nil
}

func (d *Device) Release() error {
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port, d.conn = nil, nil
	if err != nil {
		return fmt.Errorf("close spi port %s: %w", d.cfg.Port, err)
	}
	return nil
}

func (d *Device) Transfer(w []byte) ([]byte, error) {
	if d.conn == nil {
		return nil, fmt.Errorf("spi %q: not initialized", d.name)
	}
	r := make([]byte, len(w))
	if err := d.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("spi transfer on %s: %w", d.cfg.Port, err)
	}
	if d.Verbose() {
		slog.Debug("spi transfer", "device", d.name, "bytes", len(w))
	}
	return r, nil
}
