package config

import (
	"fmt"

	"github.com/hilrig/hilrig/internal/device"
	"github.com/hilrig/hilrig/internal/devman"
	"github.com/hilrig/hilrig/internal/report"
)

// Category names. Protocols initialize before peripherals, matching
// the order the file declares them in.
const (
	CategoryProtocols   = "protocols"
	CategoryPeripherals = "peripherals"
)

// Build walks protocols then peripherals in declared order and
// constructs each device through the builder registry, filling the
// manager. simulate selects the simulated variant of every driver.
func Build(cfg *Config, reg device.Registry, rec *report.Recorder, simulate bool) (*devman.Manager, error) {
	mgr := devman.NewManager(rec)
	for _, cat := range []struct {
		name    string
		stanzas []map[string]any
	}{
		{CategoryProtocols, cfg.Protocols},
		{CategoryPeripherals, cfg.Peripherals},
	} {
		for _, stanza := range cat.stanzas {
			dev, err := buildDevice(reg, stanza, simulate)
			if err != nil {
				return nil, fmt.Errorf("build %s: %w", cat.name, err)
			}
			mgr.AddDevice(cat.name, dev)
		}
	}
	return mgr, nil
}

func buildDevice(reg device.Registry, stanza map[string]any, simulate bool) (device.Device, error) {
	spec := specFromStanza(stanza)
	builder, ok := reg.Lookup(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("device %q: no driver for type %q", spec.Name, spec.Kind)
	}
	dev, err := builder(spec, simulate)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", spec.Name, err)
	}
	if spec.Bool("logging", false) {
		if t, ok := dev.(device.LogToggler); ok {
			t.EnableLogging()
		}
	}
	return dev, nil
}

// specFromStanza splits a validated stanza into the driver kind, the
// instance name, and the remaining options.
func specFromStanza(stanza map[string]any) device.Spec {
	spec := device.Spec{Options: make(map[string]any, len(stanza))}
	for k, v := range stanza {
		switch k {
		case "type":
			spec.Kind, _ = v.(string)
		case "name":
			spec.Name, _ = v.(string)
		default:
			spec.Options[k] = v
		}
	}
	return spec
}

// SimulateResolved decides whether the run uses simulated devices:
// an explicit config value wins, otherwise the caller's host default.
func (c *Config) SimulateResolved(hostDefault bool) bool {
	if c.Simulate != nil {
		return *c.Simulate
	}
	return hostDefault
}
