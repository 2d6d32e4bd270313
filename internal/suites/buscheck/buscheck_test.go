package buscheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/config"
	"github.com/hilrig/hilrig/internal/devman"
	"github.com/hilrig/hilrig/internal/driver/adc"
	"github.com/hilrig/hilrig/internal/driver/gpio"
	"github.com/hilrig/hilrig/internal/driver/modbus"
	"github.com/hilrig/hilrig/internal/driver/uart"
	"github.com/hilrig/hilrig/internal/report"
	"github.com/hilrig/hilrig/internal/rig"
	"github.com/hilrig/hilrig/internal/testutil"
)

func newEngine(t *testing.T, fill func(m *devman.Manager)) *rig.Engine {
	t.Helper()
	rec := report.NewRecorder(testutil.DiscardLogger(), testutil.NewClock(testutil.Base, 0).Now)
	mgr := devman.NewManager(rec)
	if fill != nil {
		fill(mgr)
	}
	return rig.New(mgr, rec, testutil.NewClock(testutil.Base, 0).Now)
}

func TestGroup_AllProbesPassOnSims(t *testing.T) {
	e := newEngine(t, func(m *devman.Manager) {
		m.AddDevice(config.CategoryProtocols, modbus.NewSim("plc", modbus.Config{Port: "/dev/ttyUSB0", UnitID: 1}))
		m.AddDevice(config.CategoryPeripherals, gpio.NewSim("relay", gpio.Config{Pin: 17, Direction: "out"}))
		m.AddDevice(config.CategoryPeripherals, uart.NewSim("console", uart.Config{Port: "/dev/ttyAMA0"}))
		m.AddDevice(config.CategoryPeripherals, adc.NewSim("sense", adc.Config{Port: "/dev/spidev0.1", Channels: 8, Reference: 3.3}))
	})

	sum, err := e.Run([]*rig.TestGroup{Group()})
	require.NoError(t, err)
	assert.Equal(t, rig.StatePassed, sum.State)
	assert.Zero(t, sum.Failed)
}

func TestGroup_SkipsWithoutDevices(t *testing.T) {
	e := newEngine(t, nil)

	sum, err := e.Run([]*rig.TestGroup{Group()})
	require.NoError(t, err)

	// Every probe skips with an INFO entry and passes.
	assert.Equal(t, rig.StatePassed, sum.State)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 4, sum.Passed)

	infos := 0
	for _, entry := range e.Recorder().Entries() {
		if entry.Level == report.LevelInfo && entry.Group == "Bus Checks" {
			infos++
		}
	}
	assert.Equal(t, 4, infos)
}

func TestGroup_InputOnlyGPIOSkipsLatch(t *testing.T) {
	e := newEngine(t, func(m *devman.Manager) {
		m.AddDevice(config.CategoryPeripherals, gpio.NewSim("button", gpio.Config{Pin: 22, Direction: "in"}))
	})

	sum, err := e.Run([]*rig.TestGroup{Group()})
	require.NoError(t, err)
	assert.Zero(t, sum.Failed, "input-only pins must not be driven")
}
