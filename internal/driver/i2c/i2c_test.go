package i2c

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/device"
)

func TestBuilder_RequiredOptions(t *testing.T) {
	b, ok := device.DefaultRegistry.Lookup("i2c")
	require.True(t, ok)

	_, err := b(device.Spec{Kind: "i2c", Name: "x",
		Options: map[string]any{"bus": "/dev/i2c-1"}}, true)
	assert.Error(t, err, "address is required")

	dev, err := b(device.Spec{Kind: "i2c", Name: "eeprom",
		Options: map[string]any{"bus": "/dev/i2c-1", "address": 0x50}}, true)
	require.NoError(t, err)
	sim := dev.(*Sim)
	assert.Equal(t, uint16(0x50), sim.cfg.Address)
	assert.Equal(t, device.Resources{Ports: []string{"/dev/i2c-1"}}, sim.RequiredResources())
}

func TestSim_RegisterFile(t *testing.T) {
	d := NewSim("eeprom", Config{Bus: "/dev/i2c-1", Address: 0x50})
	require.NoError(t, d.Initialize())

	require.NoError(t, d.WriteReg(0x10, []byte{0xde, 0xad}))
	got, err := d.ReadReg(0x10, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, got)

	// Unwritten registers read zero, short reads truncate.
	got, err = d.ReadReg(0x20, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0}, got)

	got, err = d.ReadReg(0x10, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde}, got)
}

func TestSim_LifecycleGuards(t *testing.T) {
	d := NewSim("eeprom", Config{Bus: "/dev/i2c-1", Address: 0x50})
	_, err := d.ReadReg(0, 1)
	assert.Error(t, err)

	require.NoError(t, d.Initialize())
	require.NoError(t, d.WriteReg(0, []byte{1}))
	require.NoError(t, d.Release())
	assert.Error(t, d.WriteReg(0, []byte{1}))
}
