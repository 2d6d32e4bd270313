// Package adc drives an MCP3008-class SPI analog-to-digital converter
// through periph.io. The SPI port is the exclusive resource.
package adc

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/hilrig/hilrig/internal/device"
)

// Converter is the operation surface test bodies use.
type Converter interface {
	// ReadChannel samples one channel, returning the raw 10-bit count.
	ReadChannel(ch int) (int, error)
	// Voltage samples one channel and scales by the reference voltage.
	Voltage(ch int) (float64, error)
}

const maxCount = 1023 // 10-bit converter

// Config is the decoded adc stanza.
type Config struct {
	Port      string
	Channels  int     // populated channels, 1..8
	Reference float64 // reference voltage
	Hz        int64
}

func init() {
	device.Register("adc", func(spec device.Spec, simulate bool) (device.Device, error) {
		port, err := spec.StrRequired("port")
		if err != nil {
			return nil, err
		}
		cfg := Config{
			Port:      port,
			Channels:  spec.Int("channels", 8),
			Reference: spec.Float("reference", 3.3),
			Hz:        int64(spec.Int("hz", 1_350_000)),
		}
		if cfg.Channels < 1 || cfg.Channels > 8 {
			return nil, fmt.Errorf("adc %q: channels %d out of range", spec.Name, cfg.Channels)
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is an MCP3008 on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	port spi.PortCloser
	conn spi.Conn
}

// New creates an unopened converter.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Port}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{
		"port":      d.cfg.Port,
		"channels":  fmt.Sprintf("%d", d.cfg.Channels),
		"reference": fmt.Sprintf("%g", d.cfg.Reference),
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
	conn, err := port.Connect(physic.Frequency(d.cfg.Hz)*physic.Hertz, spi.Mode0, 8)
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

func (d *Device) ReadChannel(ch int) (int, error) {
	if d.conn == nil {
		return 0, fmt.Errorf("adc %q: not initialized", d.name)
	}
	if ch < 0 || ch >= d.cfg.Channels {
		return 0, fmt.Errorf("adc %q: channel %d out of range", d.name, ch)
	}
	// MCP3008 single-ended conversion: start bit, then SGL|channel in
	// the top nibble of the second byte.
	w := []byte{0x01, byte(0x80 | ch<<4), 0x00}
	r := make([]byte, 3)
	if err := d.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("adc %q: sample channel %d: %w", d.name, ch, err)
	}
	count := int(r[1]&0x03)<<8 | int(r[2])
	if d.Verbose() {
		slog.Debug("adc sample", "device", d.name, "channel", ch, "count", count)
	}
	return count, nil
}

func (d *Device) Voltage(ch int) (float64, error) {
	count, err := d.ReadChannel(ch)
	if err != nil {
		return 0, err
	}
	return float64(count) / maxCount * d.cfg.Reference, nil
}
