// Package pwm drives pulse-width modulated outputs. Hardware channels
// go through the kernel's pwm sysfs interface; pins without a hardware
// channel fall back to software PWM over the GPIO character device.
package pwm

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hilrig/hilrig/internal/device"
)

// Output is the operation surface test bodies use.
type Output interface {
	SetFrequency(hz float64) error
	SetDuty(percent float64) error
	Start() error
	Stop() error
}

// Config is the decoded pwm stanza.
type Config struct {
	Pin       int
	Frequency float64 // Hz
	Duty      float64 // percent, 0..100
	Mode      string  // "hardware" | "software"
}

// hardwareChannels maps BCM pins to pwmchip0 channels on Pi hardware.
var hardwareChannels = map[int]int{
	12: 0,
	18: 0,
	13: 1,
	19: 1,
}

func init() {
	device.Register("pwm", func(spec device.Spec, simulate bool) (device.Device, error) {
		cfg := Config{
			Pin:       spec.Int("pin", -1),
			Frequency: spec.Float("frequency", 1000),
			Duty:      spec.Float("duty", 50),
			Mode:      spec.Str("mode", ""),
		}
		if cfg.Pin < 0 {
			return nil, fmt.Errorf("pwm %q: missing pin", spec.Name)
		}
		if cfg.Mode == "" {
			if _, ok := hardwareChannels[cfg.Pin]; ok {
				cfg.Mode = "hardware"
			} else {
				cfg.Mode = "software"
			}
		}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		switch cfg.Mode {
		case "hardware":
			channel, ok := hardwareChannels[cfg.Pin]
			if !ok {
				return nil, fmt.Errorf("pwm %q: pin %d has no hardware channel", spec.Name, cfg.Pin)
			}
			return NewHardware(spec.Name, cfg, channel), nil
		case "software":
			return NewSoftware(spec.Name, cfg), nil
		default:
			return nil, fmt.Errorf("pwm %q: unknown mode %q", spec.Name, cfg.Mode)
		}
	})
}

// sysfsRoot is swapped by tests to point at fixture files.
var sysfsRoot = "/sys/class/pwm/pwmchip0"

// Hardware is a kernel PWM channel driven through sysfs.
type Hardware struct {
	device.Logging
	name    string
	cfg     Config
	channel int
	open    bool
}

// NewHardware creates a hardware PWM channel. The sysfs export happens
// in Initialize, after the pin has been reserved.
func NewHardware(name string, cfg Config, channel int) *Hardware {
	return &Hardware{name: name, cfg: cfg, channel: channel}
}

func (d *Hardware) Name() string { return d.name }

func (d *Hardware) RequiredResources() device.Resources {
	return device.Resources{Pins: []int{d.cfg.Pin}}
}

func (d *Hardware) Params() map[string]string {
	return map[string]string{
		"pin":       fmt.Sprintf("%d", d.cfg.Pin),
		"mode":      "hardware",
		"frequency": fmt.Sprintf("%g", d.cfg.Frequency),
	}
}

func (d *Hardware) channelDir() string {
	return filepath.Join(sysfsRoot, fmt.Sprintf("pwm%d", d.channel))
}

func (d *Hardware) Initialize() error {
	if _, err := os.Stat(d.channelDir()); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(sysfsRoot, "export"), strconv.Itoa(d.channel)); err != nil {
			return fmt.Errorf("export pwm channel %d: %w", d.channel, err)
		}
	}
	d.open = true
	if err := d.SetFrequency(d.cfg.Frequency); err != nil {
		d.open = false
		return err
	}
	if err := d.SetDuty(d.cfg.Duty); err != nil {
		d.open = false
		return err
	}
	return nil
}

func (d *Hardware) Release() error {
	if !d.open {
		return nil
	}
	d.open = false
	if err := d.Stop(); err != nil {
		return err
	}
	if err := writeSysfs(filepath.Join(sysfsRoot, "unexport"), strconv.Itoa(d.channel)); err != nil {
		return fmt.Errorf("unexport pwm channel %d: %w", d.channel, err)
	}
	return nil
}

func (d *Hardware) SetFrequency(hz float64) error {
	if hz <= 0 {
		return fmt.Errorf("pwm %q: frequency %g must be positive", d.name, hz)
	}
	d.cfg.Frequency = hz
	period := int(float64(time.Second.Nanoseconds()) / hz)
	if err := writeSysfs(filepath.Join(d.channelDir(), "period"), strconv.Itoa(period)); err != nil {
		return fmt.Errorf("set period: %w", err)
	}
	// Period changes rescale the duty cycle; rewrite it.
	return d.SetDuty(d.cfg.Duty)
}

func (d *Hardware) SetDuty(percent float64) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("pwm %q: duty %g%% out of range", d.name, percent)
	}
	d.cfg.Duty = percent
	period := float64(time.Second.Nanoseconds()) / d.cfg.Frequency
	duty := int(period * percent / 100)
	if err := writeSysfs(filepath.Join(d.channelDir(), "duty_cycle"), strconv.Itoa(duty)); err != nil {
		return fmt.Errorf("set duty cycle: %w", err)
	}
	return nil
}

func (d *Hardware) Start() error {
	return writeSysfs(filepath.Join(d.channelDir(), "enable"), "1")
}

func (d *Hardware) Stop() error {
	return writeSysfs(filepath.Join(d.channelDir(), "enable"), "0")
}

func writeSysfs(path, value string) error {
	return os.WriteFile(path, []byte(strings.TrimSpace(value)+"\n"), 0o644)
}
