// Package devman implements resource-arbitrated device lifecycle
// management: all-or-nothing initialization of every configured device
// with conflict detection on declared pins and ports, and best-effort
// release that always leaves the registries empty.
//
// Execution is strictly sequential; the manager carries no locks and
// must only be used from the goroutine driving the run.
package devman

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hilrig/hilrig/internal/device"
	"github.com/hilrig/hilrig/internal/report"
)

// Manager owns every configured device, grouped into named categories
// ("protocols", "peripherals") that initialize in the order they were
// declared. Devices within a category keep declaration order too.
type Manager struct {
	rec        *report.Recorder
	registry   *Registry
	categories []string
	devices    map[string][]device.Device

	// initialized grows monotonically during InitializeAll and is
	// drained, in the same order, by ReleaseAll.
	initialized []device.Device
}

// NewManager creates a Manager recording lifecycle entries through rec.
func NewManager(rec *report.Recorder) *Manager {
	return &Manager{
		rec:      rec,
		registry: NewRegistry(),
		devices:  make(map[string][]device.Device),
	}
}

// AddDevice appends a device to a category. Categories are created in
// first-use order, which is also their initialization order.
func (m *Manager) AddDevice(category string, d device.Device) {
	if _, ok := m.devices[category]; !ok {
		m.categories = append(m.categories, category)
	}
	m.devices[category] = append(m.devices[category], d)
}

// Categories returns the category names in initialization order.
func (m *Manager) Categories() []string {
	return m.categories
}

// Devices returns the devices of a category in declaration order.
func (m *Manager) Devices(category string) []device.Device {
	return m.devices[category]
}

// Registry exposes the resource registry, mainly for tests and
// diagnostics.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// InitializeAll walks every category and device in declared order. For
// each device all declared pins and ports are reserved first; a
// conflict rolls back everything initialized so far and returns the
// conflict error before the device's Initialize is ever called. An
// Initialize failure likewise rolls back and returns. After a nil
// return every declared device is initialized and registered.
func (m *Manager) InitializeAll() error {
	for _, category := range m.categories {
		for _, dev := range m.devices[category] {
			if err := m.claimResources(dev); err != nil {
				m.rec.Record(report.LevelError, "", "", fmt.Sprintf("Resource conflict: %s", errMessage(err)), "")
				m.ReleaseAll()
				return err
			}
			if err := dev.Initialize(); err != nil {
				initErr := NewInitError(dev.Name(), err)
				m.rec.Record(report.LevelError, "", "", fmt.Sprintf("Device '%s' %s", dev.Name(), initErr.Message), "")
				m.ReleaseAll()
				return initErr
			}
			m.initialized = append(m.initialized, dev)
			m.rec.Record(report.LevelInfo, "", "", initializedMessage(dev), "")
		}
	}
	return nil
}

// claimResources reserves every pin and port the device declares.
// Reservations are logged as they happen; on conflict the partial
// claims are cleaned up by the caller's rollback.
func (m *Manager) claimResources(dev device.Device) error {
	res := dev.RequiredResources()
	for _, pin := range res.Pins {
		if err := m.registry.ClaimPin(pin, dev.Name()); err != nil {
			return err
		}
		m.rec.Record(report.LevelInfo, "", "", fmt.Sprintf("GPIO pin %d is now reserved by '%s'", pin, dev.Name()), "")
	}
	for _, port := range res.Ports {
		if err := m.registry.ClaimPort(port, dev.Name()); err != nil {
			return err
		}
		m.rec.Record(report.LevelInfo, "", "", fmt.Sprintf("Port '%s' is now reserved by '%s'", port, dev.Name()), "")
	}
	return nil
}

// ReleaseAll drains the initialized-device list, releasing each device
// in the order it was initialized. A failed Release is logged and does
// not stop the drain. Afterwards the list and both registries are
// unconditionally empty, no matter how many releases failed.
func (m *Manager) ReleaseAll() {
	for _, dev := range m.initialized {
		if err := dev.Release(); err != nil {
			relErr := NewReleaseError(dev.Name(), err)
			m.rec.Record(report.LevelError, "", "", fmt.Sprintf("Device '%s' %s", dev.Name(), relErr.Message), "")
			continue
		}
		m.rec.Record(report.LevelInfo, "", "", fmt.Sprintf("Released '%s'", dev.Name()), "")
	}
	m.initialized = nil
	m.registry.Reset()
}

// Initialized returns the devices initialized so far, in order.
func (m *Manager) Initialized() []device.Device {
	return m.initialized
}

// EnableLoggingAll turns on per-operation logging on every device that
// supports it. Devices without the capability are skipped.
func (m *Manager) EnableLoggingAll() {
	m.eachToggler(func(t device.LogToggler) { t.EnableLogging() })
}

// DisableLoggingAll turns off per-operation logging on every device
// that supports it.
func (m *Manager) DisableLoggingAll() {
	m.eachToggler(func(t device.LogToggler) { t.DisableLogging() })
}

func (m *Manager) eachToggler(fn func(device.LogToggler)) {
	for _, category := range m.categories {
		for _, dev := range m.devices[category] {
			if t, ok := dev.(device.LogToggler); ok {
				fn(t)
			}
		}
	}
}

// Device returns the named device from a category, or a not-found
// error. Lookup is a linear scan; device counts are small.
func (m *Manager) Device(category, name string) (device.Device, error) {
	for _, dev := range m.devices[category] {
		if dev.Name() == name {
			return dev, nil
		}
	}
	return nil, NewNotFoundError(category, name)
}

// Lookup returns the named device asserted to the interface T, so test
// bodies can reach driver-specific operations without hand-written type
// switches.
func Lookup[T any](m *Manager, category, name string) (T, error) {
	var zero T
	dev, err := m.Device(category, name)
	if err != nil {
		return zero, err
	}
	typed, ok := dev.(T)
	if !ok {
		want := reflect.TypeOf((*T)(nil)).Elem()
		return zero, fmt.Errorf("device '%s' in category '%s' is %T, not %s", name, category, dev, want)
	}
	return typed, nil
}

// initializedMessage renders the post-init INFO line with the device's
// reported params in stable order.
func initializedMessage(dev device.Device) string {
	params := dev.Params()
	if len(params) == 0 {
		return fmt.Sprintf("Initialized '%s'", dev.Name())
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return fmt.Sprintf("Initialized '%s' (%s)", dev.Name(), strings.Join(pairs, ", "))
}

// errMessage extracts the structured message from a RuntimeError,
// falling back to Error() for anything else.
func errMessage(err error) string {
	if re, ok := err.(*RuntimeError); ok {
		msg := re.Message
		if re.Device != "" {
			msg += fmt.Sprintf(" (requested by '%s')", re.Device)
		}
		return msg
	}
	return err.Error()
}
