// Package gpio drives a single GPIO line through the Linux character
// device, via go-gpiocdev. Each configured pin is one device instance
// owning exactly that pin.
package gpio

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"github.com/hilrig/hilrig/internal/device"
)

// Pin is the operation surface test bodies use.
type Pin interface {
	Write(value int) error
	Read() (int, error)
	Toggle() error
	Direction() string
}

// Config is the decoded gpio stanza.
type Config struct {
	Chip      string // character device name, default gpiochip0
	Pin       int    // BCM line offset
	Direction string // "in" | "out"
	Pull      string // "up" | "down" | "none"
	Initial   int    // initial output level
}

func init() {
	device.Register("gpio", func(spec device.Spec, simulate bool) (device.Device, error) {
		cfg := Config{
			Chip:      spec.Str("chip", "gpiochip0"),
			Pin:       spec.Int("pin", -1),
			Direction: spec.Str("direction", "in"),
			Pull:      spec.Str("pull", "none"),
			Initial:   spec.Int("initial", 0),
		}
		if cfg.Pin < 0 {
			return nil, fmt.Errorf("gpio %q: missing pin", spec.Name)
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is one GPIO line on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	line *gpiocdev.Line
}

// New creates an unopened GPIO device. The line is requested in
// Initialize, after the pin has been reserved.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Pins: []int{d.cfg.Pin}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{
		"pin":       fmt.Sprintf("%d", d.cfg.Pin),
		"direction": d.cfg.Direction,
	}
}

func (d *Device) Initialize() error {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer("hilrig")}
	switch d.cfg.Direction {
	case "out":
		opts = append(opts, gpiocdev.AsOutput(d.cfg.Initial))
	case "in":
		opts = append(opts, gpiocdev.AsInput)
	default:
		return fmt.Errorf("gpio %q: unknown direction %q", d.name, d.cfg.Direction)
	}
	switch d.cfg.Pull {
	case "up":
		opts = append(opts, gpiocdev.WithPullUp)
	case "down":
		opts = append(opts, gpiocdev.WithPullDown)
	}

	line, err := gpiocdev.RequestLine(d.cfg.Chip, d.cfg.Pin, opts...)
	if err != nil {
		return fmt.Errorf("request line %d on %s: %w", d.cfg.Pin, d.cfg.Chip, err)
	}
	d.line = line
	return nil
}

func (d *Device) Release() error {
	if d.line == nil {
		return nil
	}
	err := d.line.Close()
	d.line = nil
	if err != nil {
		return fmt.Errorf("close line %d: %w", d.cfg.Pin, err)
	}
	return nil
}

func (d *Device) Direction() string { return d.cfg.Direction }

func (d *Device) Write(value int) error {
	if d.line == nil {
		return fmt.Errorf("gpio %q: not initialized", d.name)
	}
	if d.cfg.Direction != "out" {
		return fmt.Errorf("gpio %q: pin %d is not configured as output", d.name, d.cfg.Pin)
	}
	if d.Verbose() {
		slog.Debug("gpio write", "device", d.name, "pin", d.cfg.Pin, "value", value)
	}
	return d.line.SetValue(value)
}

func (d *Device) Read() (int, error) {
	if d.line == nil {
		return 0, fmt.Errorf("gpio %q: not initialized", d.name)
	}
	v, err := d.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read pin %d: %w", d.cfg.Pin, err)
	}
	if d.Verbose() {
		slog.Debug("gpio read", "device", d.name, "pin", d.cfg.Pin, "value", v)
	}
	return v, nil
}

func (d *Device) Toggle() error {
	v, err := d.Read()
	if err != nil {
		return err
	}
	return d.Write(1 - v)
}
