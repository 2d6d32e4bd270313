// Package modbus drives a Modbus RTU slave over a serial line through
// github.com/goburrow/modbus. The serial port is the exclusive
// resource. One handler per configured device; the run is sequential so
// the handler never sees concurrent requests.
package modbus

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	gomodbus "github.com/goburrow/modbus"

	"github.com/hilrig/hilrig/internal/device"
)

// Client is the operation surface test bodies use. Registers travel as
// decoded words and coils as booleans; the wire framing stays inside
// the vendor library.
type Client interface {
	ReadHolding(addr, quantity uint16) ([]uint16, error)
	ReadInput(addr, quantity uint16) ([]uint16, error)
	WriteRegister(addr, value uint16) error
	ReadCoils(addr, quantity uint16) ([]bool, error)
	WriteCoil(addr uint16, on bool) error
	ReadDiscrete(addr, quantity uint16) ([]bool, error)
}

// Config is the decoded modbus stanza.
type Config struct {
	Port     string
	Baudrate int
	Parity   string // "N" | "E" | "O"
	StopBits int
	UnitID   byte
	Timeout  time.Duration
}

func init() {
	device.Register("modbus", func(spec device.Spec, simulate bool) (device.Device, error) {
		port, err := spec.StrRequired("port")
		if err != nil {
			return nil, err
		}
		cfg := Config{
			Port:     port,
			Baudrate: spec.Int("baudrate", 9600),
			Parity:   spec.Str("parity", "N"),
			StopBits: spec.Int("stopbits", 1),
			UnitID:   byte(spec.Int("unit", 1)),
			Timeout:  time.Duration(spec.Float("timeout", 1) * float64(time.Second)),
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is a Modbus RTU master endpoint on real hardware.
type Device struct {
	device.Logging
	name    string
	cfg     Config
	handler *gomodbus.RTUClientHandler
	client  gomodbus.Client
}

// New creates an unconnected Modbus device.
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
		"unit":     fmt.Sprintf("%d", d.cfg.UnitID),
	}
}

func (d *Device) Initialize() error {
	handler := gomodbus.NewRTUClientHandler(d.cfg.Port)
	handler.BaudRate = d.cfg.Baudrate
	handler.DataBits = 8
	handler.Parity = d.cfg.Parity
	handler.StopBits = d.cfg.StopBits
	handler.SlaveId = d.cfg.UnitID
	handler.Timeout = d.cfg.Timeout

	if err := handler.Connect(); err != nil {
		return fmt.Errorf("connect %s: %w", d.cfg.Port, err)
	}
	d.handler = handler
	d.client = gomodbus.NewClient(handler)
	return nil
}

func (d *Device) Release() error {
	if d.handler == nil {
		return nil
	}
	err := d.handler.Close()
	d.handler, d.client = nil, nil
	if err != nil {
		return fmt.Errorf("close %s: %w", d.cfg.Port, err)
	}
	return nil
}

func (d *Device) ReadHolding(addr, quantity uint16) ([]uint16, error) {
	if d.client == nil {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	raw, err := d.client.ReadHoldingRegisters(addr, quantity)
	if err != nil {
		return nil, fmt.Errorf("read holding %d+%d: %w", addr, quantity, err)
	}
	if d.Verbose() {
		slog.Debug("modbus read holding", "device", d.name, "addr", addr, "quantity", quantity)
	}
	return bytesToWords(raw), nil
}

func (d *Device) ReadInput(addr, quantity uint16) ([]uint16, error) {
	if d.client == nil {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	raw, err := d.client.ReadInputRegisters(addr, quantity)
	if err != nil {
		return nil, fmt.Errorf("read input %d+%d: %w", addr, quantity, err)
	}
	return bytesToWords(raw), nil
}

func (d *Device) WriteRegister(addr, value uint16) error {
	if d.client == nil {
		return fmt.Errorf("modbus %q: not initialized", d.name)
	}
	if d.Verbose() {
		slog.Debug("modbus write register", "device", d.name, "addr", addr, "value", value)
	}
	if _, err := d.client.WriteSingleRegister(addr, value); err != nil {
		return fmt.Errorf("write register %d: %w", addr, err)
	}
	return nil
}

func (d *Device) ReadCoils(addr, quantity uint16) ([]bool, error) {
	if d.client == nil {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	raw, err := d.client.ReadCoils(addr, quantity)
	if err != nil {
		return nil, fmt.Errorf("read coils %d+%d: %w", addr, quantity, err)
	}
	return bytesToBits(raw, int(quantity)), nil
}

func (d *Device) WriteCoil(addr uint16, on bool) error {
	if d.client == nil {
		return fmt.Errorf("modbus %q: not initialized", d.name)
	}
	value := uint16(0x0000)
	if on {
		value = 0xFF00
	}
	if _, err := d.client.WriteSingleCoil(addr, value); err != nil {
		return fmt.Errorf("write coil %d: %w", addr, err)
	}
	return nil
}

func (d *Device) ReadDiscrete(addr, quantity uint16) ([]bool, error) {
	if d.client == nil {
		return nil, fmt.Errorf("modbus %q: not initialized", d.name)
	}
	raw, err := d.client.ReadDiscreteInputs(addr, quantity)
	if err != nil {
		return nil, fmt.Errorf("read discrete %d+%d: %w", addr, quantity, err)
	}
	return bytesToBits(raw, int(quantity)), nil
}

// bytesToWords decodes big-endian register payloads.
func bytesToWords(raw []byte) []uint16 {
	words := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		words = append(words, binary.BigEndian.Uint16(raw[i:]))
	}
	return words
}

// bytesToBits unpacks a coil/discrete payload, LSB first per the
// protocol, truncated to the requested quantity.
func bytesToBits(raw []byte, quantity int) []bool {
	bits := make([]bool, 0, quantity)
	for i := 0; i < quantity; i++ {
		byteIdx, bitIdx := i/8, i%8
		if byteIdx >= len(raw) {
			break
		}
		bits = append(bits, raw[byteIdx]&(1<<bitIdx) != 0)
	}
	return bits
}
