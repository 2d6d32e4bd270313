// Package uart drives a serial port through go.bug.st/serial. The port
// path is the device's exclusive resource.
package uart

import (
	"fmt"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"github.com/hilrig/hilrig/internal/device"
)

// Port is the operation surface test bodies use.
type Port interface {
	Send(data []byte) error
	Recv(max int) ([]byte, error)
	Flush() error
}

// Config is the decoded uart stanza.
type Config struct {
	Port     string
	Baudrate int
	DataBits int
	Parity   string // "none" | "even" | "odd"
	StopBits int
	Timeout  time.Duration
}

func init() {
	device.Register("uart", func(spec device.Spec, simulate bool) (device.Device, error) {
		port, err := spec.StrRequired("port")
		if err != nil {
			return nil, err
		}
		cfg := Config{
			Port:     port,
			Baudrate: spec.Int("baudrate", 9600),
			DataBits: spec.Int("databits", 8),
			Parity:   spec.Str("parity", "none"),
			StopBits: spec.Int("stopbits", 1),
			Timeout:  time.Duration(spec.Float("timeout", 1) * float64(time.Second)),
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is a serial port on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	port serial.Port
}

// New creates an unopened serial device.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Port}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{
		"port":     d.cfg.Port,
		"baudrate": fmt.Sprintf("%d", d.cfg.Baudrate),
	}
}

func (d *Device) Initialize() error {
	mode := &serial.Mode{
		BaudRate: d.cfg.Baudrate,
		DataBits: d.cfg.DataBits,
	}
	switch d.cfg.Parity {
	case "even":
		mode.Parity = serial.EvenParity
	case "odd":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	if d.cfg.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	} else {
		mode.StopBits = serial.OneStopBit
	}

	port, err := serial.Open(d.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.cfg.Port, err)
	}
	if err := port.SetReadTimeout(d.cfg.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", d.cfg.Port, err)
	}
	d.port = port
	return nil
}

func (d *Device) Release() error {
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", d.cfg.Port, err)
	}
	return nil
}

func (d *Device) Send(data []byte) error {
	if d.port == nil {
		return fmt.Errorf("uart %q: not initialized", d.name)
	}
	if d.Verbose() {
		slog.Debug("uart send", "device", d.name, "bytes", len(data))
	}
	n, err := d.port.Write(data)
	if err != nil {
		return fmt.Errorf("write %s: %w", d.cfg.Port, err)
	}
	if n != len(data) {
		return fmt.Errorf("write %s: short write (%d of %d)", d.cfg.Port, n, len(data))
	}
	return nil
}

// Recv reads up to max bytes, bounded by the configured read timeout.
// A timeout with nothing received returns an empty slice, not an error.
func (d *Device) Recv(max int) ([]byte, error) {
	if d.port == nil {
		return nil, fmt.Errorf("uart %q: not initialized", d.name)
	}
	buf := make([]byte, max)
	n, err := d.port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.cfg.Port, err)
	}
	if d.Verbose() {
		slog.Debug("uart recv", "device", d.name, "bytes", n)
	}
	return buf[:n], nil
}

// Flush drops anything pending in the input buffer.
func (d *Device) Flush() error {
	if d.port == nil {
		return fmt.Errorf("uart %q: not initialized", d.name)
	}
	return d.port.ResetInputBuffer()
}
