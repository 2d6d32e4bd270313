// Package onewire reads DS18B20-class temperature sensors through the
// kernel's w1 sysfs interface. The sensor's sysfs node is the exclusive
// resource; the bus master is configured out-of-band (dtoverlay).
package onewire

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hilrig/hilrig/internal/device"
)

// Sensor is the operation surface test bodies use.
type Sensor interface {
	// ReadTemperature returns the sensor reading in degrees Celsius.
	ReadTemperature() (float64, error)
}

// Config is the decoded onewire stanza.
type Config struct {
	ID string // sensor id, e.g. 28-0316a2799ceb
}

// sysfsRoot is swapped by tests to point at fixture files.
var sysfsRoot = "/sys/bus/w1/devices"

func init() {
	device.Register("onewire", func(spec device.Spec, simulate bool) (device.Device, error) {
		id, err := spec.StrRequired("id")
		if err != nil {
			return nil, err
		}
		cfg := Config{ID: id}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is one w1 sensor on real hardware.
type Device struct {
	device.Logging
	name        string
	cfg         Config
	initialized bool
}

// New creates a sensor device. Initialize verifies the sysfs node
// exists.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) slavePath() string {
	return filepath.Join(sysfsRoot, d.cfg.ID, "w1_slave")
}

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{filepath.Join(sysfsRoot, d.cfg.ID)}}
}

func (d *Device) Params() map[string]string {
	return map[string]string{"id": d.cfg.ID}
}

func (d *Device) Initialize() error {
	if _, err := os.Stat(d.slavePath()); err != nil {
		return fmt.Errorf("sensor %s not present: %w", d.cfg.ID, err)
	}
	d.initialized = true
	return nil
}

func (d *Device) Release() error {
	d.initialized = false
	return nil
}

func (d *Device) ReadTemperature() (float64, error) {
	if !d.initialized {
		return 0, fmt.Errorf("onewire %q: not initialized", d.name)
	}
	raw, err := os.ReadFile(d.slavePath())
	if err != nil {
		return 0, fmt.Errorf("read sensor %s: %w", d.cfg.ID, err)
	}
	return parseSlave(string(raw))
}

// parseSlave decodes the two-line w1_slave format:
//
//	4b 01 4b 46 7f ff 05 10 d8 : crc=d8 YES
//	4b 01 4b 46 7f ff 05 10 d8 t=20687
func parseSlave(raw string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("malformed w1_slave data")
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, fmt.Errorf("sensor CRC check failed")
	}
	_, after, found := strings.Cut(lines[1], "t=")
	if !found {
		return 0, fmt.Errorf("no temperature in w1_slave data")
	}
	milli, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil {
		return 0, fmt.Errorf("parse temperature %q: %w", after, err)
	}
	return float64(milli) / 1000, nil
}
