package modbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/device"
)

func TestBuilder_Defaults(t *testing.T) {
	b, ok := device.DefaultRegistry.Lookup("modbus")
	require.True(t, ok)

	_, err := b(device.Spec{Kind: "modbus", Name: "x"}, true)
	assert.Error(t, err, "port is required")

	dev, err := b(device.Spec{Kind: "modbus", Name: "plc",
		Options: map[string]any{"port": "/dev/ttyUSB0", "unit": 3, "timeout": 0.5}}, true)
	require.NoError(t, err)
	sim := dev.(*Sim)
	assert.Equal(t, 9600, sim.cfg.Baudrate)
	assert.Equal(t, "N", sim.cfg.Parity)
	assert.Equal(t, byte(3), sim.cfg.UnitID)
	assert.Equal(t, 500*time.Millisecond, sim.cfg.Timeout)
}

func TestSim_HoldingRegisters(t *testing.T) {
	d := NewSim("plc", Config{Port: "/dev/ttyUSB0", UnitID: 1})
	require.NoError(t, d.Initialize())

	require.NoError(t, d.WriteRegister(100, 0xBEEF))
	require.NoError(t, d.WriteRegister(101, 42))

	words, err := d.ReadHolding(100, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xBEEF, 42, 0}, words)
}

func TestSim_CoilsAndDiscrete(t *testing.T) {
	d := NewSim("plc", Config{Port: "/dev/ttyUSB0", UnitID: 1})
	require.NoError(t, d.Initialize())

	require.NoError(t, d.WriteCoil(0, true))
	require.NoError(t, d.WriteCoil(2, true))
	coils, err := d.ReadCoils(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, coils)

	d.SetDiscrete(5, true)
	inputs, err := d.ReadDiscrete(4, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, inputs)
}

func TestSim_ScriptedInputRegisters(t *testing.T) {
	d := NewSim("plc", Config{Port: "/dev/ttyUSB0", UnitID: 1})
	require.NoError(t, d.Initialize())

	d.SetInput(30, 1234)
	words, err := d.ReadInput(30, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1234}, words)
}

func TestSim_LifecycleGuards(t *testing.T) {
	d := NewSim("plc", Config{Port: "/dev/ttyUSB0"})
	_, err := d.ReadHolding(0, 1)
	assert.Error(t, err)

	require.NoError(t, d.Initialize())
	require.NoError(t, d.Release())
	assert.Error(t, d.WriteRegister(0, 1))
}

func TestBytesToWords(t *testing.T) {
	assert.Equal(t, []uint16{0x0102, 0x0304}, bytesToWords([]byte{1, 2, 3, 4}))
	assert.Empty(t, bytesToWords(nil))
	// Odd trailing byte is dropped.
	assert.Equal(t, []uint16{0x0102}, bytesToWords([]byte{1, 2, 3}))
}

func TestBytesToBits(t *testing.T) {
	// 0b00000101 -> coils 0 and 2 set, LSB first.
	assert.Equal(t, []bool{true, false, true}, bytesToBits([]byte{0x05}, 3))
	// Quantity past the payload truncates.
	assert.Equal(t, []bool{true}, bytesToBits([]byte{0x01}, 9)[:1])
	assert.Len(t, bytesToBits([]byte{0x01}, 9), 8)
}
