package devman

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/device"
	"github.com/hilrig/hilrig/internal/report"
	"github.com/hilrig/hilrig/internal/testutil"
)

// fakeDevice records lifecycle calls into a shared journal so tests can
// assert ordering across devices.
type fakeDevice struct {
	name       string
	res        device.Resources
	initErr    error
	releaseErr error
	params     map[string]string
	journal    *[]string
}

func (d *fakeDevice) Name() string { return d.name }

func (d *fakeDevice) Initialize() error {
	*d.journal = append(*d.journal, "init:"+d.name)
	return d.initErr
}

func (d *fakeDevice) Release() error {
	*d.journal = append(*d.journal, "release:"+d.name)
	return d.releaseErr
}

func (d *fakeDevice) RequiredResources() device.Resources { return d.res }
func (d *fakeDevice) Params() map[string]string           { return d.params }

// togglingDevice additionally implements device.LogToggler.
type togglingDevice struct {
	fakeDevice
	logging bool
}

func (d *togglingDevice) EnableLogging()  { d.logging = true }
func (d *togglingDevice) DisableLogging() { d.logging = false }

func newTestManager() (*Manager, *report.Recorder, *[]string) {
	clock := testutil.NewClock(testutil.Base, time.Second)
	rec := report.NewRecorder(testutil.DiscardLogger(), clock.Now)
	journal := &[]string{}
	return NewManager(rec), rec, journal
}

func entriesAt(rec *report.Recorder, level report.Level) []report.Entry {
	var out []report.Entry
	for _, e := range rec.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func TestInitializeAll_Succeeds(t *testing.T) {
	m, rec, journal := newTestManager()
	m.AddDevice("protocols", &fakeDevice{name: "meter", res: device.Resources{Ports: []string{"/dev/ttyUSB0"}}, journal: journal,
		params: map[string]string{"baudrate": "9600", "port": "/dev/ttyUSB0"}})
	m.AddDevice("peripherals", &fakeDevice{name: "relay", res: device.Resources{Pins: []int{4}}, journal: journal})

	require.NoError(t, m.InitializeAll())

	assert.Equal(t, []string{"init:meter", "init:relay"}, *journal)
	require.Len(t, m.Initialized(), 2)

	owner, ok := m.Registry().PortOwner("/dev/ttyUSB0")
	require.True(t, ok)
	assert.Equal(t, "meter", owner)
	owner, ok = m.Registry().PinOwner(4)
	require.True(t, ok)
	assert.Equal(t, "relay", owner)

	// Params render sorted so logs are stable.
	infos := entriesAt(rec, report.LevelInfo)
	require.NotEmpty(t, infos)
	assert.Equal(t, "Initialized 'meter' (baudrate=9600, port=/dev/ttyUSB0)", infos[1].Message)
}

func TestInitializeAll_CategoriesKeepDeclaredOrder(t *testing.T) {
	m, _, journal := newTestManager()
	m.AddDevice("protocols", &fakeDevice{name: "p1", journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "d1", journal: journal})
	m.AddDevice("protocols", &fakeDevice{name: "p2", journal: journal})

	require.NoError(t, m.InitializeAll())

	assert.Equal(t, []string{"init:p1", "init:p2", "init:d1"}, *journal)
	assert.Equal(t, []string{"protocols", "peripherals"}, m.Categories())
}

func TestInitializeAll_PinConflictAbortsBeforeSecondInit(t *testing.T) {
	m, rec, journal := newTestManager()
	m.AddDevice("peripherals", &fakeDevice{name: "gpio1", res: device.Resources{Pins: []int{5}}, journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "gpio2", res: device.Resources{Pins: []int{5}}, journal: journal})

	err := m.InitializeAll()
	require.Error(t, err)
	assert.True(t, IsConflictError(err))

	// gpio2 was never initialized; gpio1 was rolled back.
	assert.Equal(t, []string{"init:gpio1", "release:gpio1"}, *journal)
	assert.Empty(t, m.Initialized())
	assert.True(t, m.Registry().Empty())

	// The conflict entry names both devices.
	errs := entriesAt(rec, report.LevelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "gpio1")
	assert.Contains(t, errs[0].Message, "gpio2")
	assert.Contains(t, errs[0].Message, "GPIO pin 5")
}

func TestInitializeAll_PortConflict(t *testing.T) {
	m, _, journal := newTestManager()
	m.AddDevice("protocols", &fakeDevice{name: "modbus", res: device.Resources{Ports: []string{"/dev/ttyUSB0"}}, journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "uart0", res: device.Resources{Ports: []string{"/dev/ttyUSB0"}}, journal: journal})

	err := m.InitializeAll()
	require.Error(t, err)
	assert.True(t, IsConflictError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "uart0", re.Device)
	assert.Equal(t, "modbus", re.Owner)
	assert.Equal(t, "port '/dev/ttyUSB0'", re.Resource)
}

func TestInitializeAll_InitFailureRollsBack(t *testing.T) {
	m, rec, journal := newTestManager()
	m.AddDevice("peripherals", &fakeDevice{name: "ok1", res: device.Resources{Pins: []int{1}}, journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "broken", res: device.Resources{Pins: []int{2}}, initErr: errors.New("no such chip"), journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "never", res: device.Resources{Pins: []int{3}}, journal: journal})

	err := m.InitializeAll()
	require.Error(t, err)
	assert.True(t, IsInitError(err))
	assert.ErrorContains(t, err, "no such chip")

	// Only ok1 was initialized and released; broken failed init and is
	// not released; never was not reached.
	assert.Equal(t, []string{"init:ok1", "init:broken", "release:ok1"}, *journal)
	assert.True(t, m.Registry().Empty())
	assert.Empty(t, m.Initialized())

	errs := entriesAt(rec, report.LevelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "broken")
}

func TestReleaseAll_KeepsGoingPastFailures(t *testing.T) {
	m, rec, journal := newTestManager()
	m.AddDevice("peripherals", &fakeDevice{name: "a", res: device.Resources{Pins: []int{1}}, journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "b", res: device.Resources{Pins: []int{2}}, releaseErr: errors.New("bus hung"), journal: journal})
	m.AddDevice("peripherals", &fakeDevice{name: "c", res: device.Resources{Pins: []int{3}}, journal: journal})
	require.NoError(t, m.InitializeAll())

	m.ReleaseAll()

	// Release order is initialization order, and b's failure does not
	// stop c from being released.
	assert.Equal(t, []string{
		"init:a", "init:b", "init:c",
		"release:a", "release:b", "release:c",
	}, *journal)
	assert.True(t, m.Registry().Empty())
	assert.Empty(t, m.Initialized())

	errs := entriesAt(rec, report.LevelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "bus hung")
}

func TestReleaseAll_EmptyIsNoop(t *testing.T) {
	m, rec, _ := newTestManager()
	m.ReleaseAll()
	assert.Empty(t, rec.Entries())
	assert.True(t, m.Registry().Empty())
}

func TestInitializeAll_ZeroResourceDevice(t *testing.T) {
	m, _, journal := newTestManager()
	m.AddDevice("peripherals", &fakeDevice{name: "selfcontained", journal: journal})

	require.NoError(t, m.InitializeAll())
	assert.Equal(t, []string{"init:selfcontained"}, *journal)
	assert.True(t, m.Registry().Empty())
	require.Len(t, m.Initialized(), 1)
}

func TestDevice_Lookup(t *testing.T) {
	m, _, journal := newTestManager()
	m.AddDevice("protocols", &fakeDevice{name: "meter", journal: journal})

	dev, err := m.Device("protocols", "meter")
	require.NoError(t, err)
	assert.Equal(t, "meter", dev.Name())

	_, err = m.Device("protocols", "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.ErrorContains(t, err, "no device 'ghost' in category 'protocols'")

	_, err = m.Device("peripherals", "meter")
	assert.True(t, IsNotFoundError(err))
}

func TestLookup_TypedAccessor(t *testing.T) {
	m, _, journal := newTestManager()
	m.AddDevice("peripherals", &togglingDevice{fakeDevice: fakeDevice{name: "chatty", journal: journal}})
	m.AddDevice("peripherals", &fakeDevice{name: "plain", journal: journal})

	toggler, err := Lookup[device.LogToggler](m, "peripherals", "chatty")
	require.NoError(t, err)
	toggler.EnableLogging()

	_, err = Lookup[device.LogToggler](m, "peripherals", "plain")
	require.Error(t, err)
	assert.ErrorContains(t, err, "not device.LogToggler")

	_, err = Lookup[device.LogToggler](m, "peripherals", "ghost")
	assert.True(t, IsNotFoundError(err))
}

func TestLoggingToggles_SkipDevicesWithoutCapability(t *testing.T) {
	m, _, journal := newTestManager()
	chatty := &togglingDevice{fakeDevice: fakeDevice{name: "chatty", journal: journal}}
	m.AddDevice("peripherals", chatty)
	m.AddDevice("peripherals", &fakeDevice{name: "plain", journal: journal})

	m.EnableLoggingAll()
	assert.True(t, chatty.logging)

	m.DisableLoggingAll()
	assert.False(t, chatty.logging)
}

func TestRuntimeError_Formats(t *testing.T) {
	conflict := NewConflictError("GPIO pin 5", "gpio2", "gpio1")
	assert.Equal(t, "RESOURCE_CONFLICT: GPIO pin 5 is already in use by 'gpio1' (device=gpio2)", conflict.Error())

	wrapped := fmt.Errorf("initialize all: %w", conflict)
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsInitError(wrapped))

	initErr := NewInitError("uart0", errors.New("permission denied"))
	assert.ErrorContains(t, initErr, "permission denied")
	assert.Equal(t, errors.New("permission denied"), errors.Unwrap(initErr))
}
