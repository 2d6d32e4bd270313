package spi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/device"
)

func TestBuilder_Defaults(t *testing.T) {
	b, ok := device.DefaultRegistry.Lookup("spi")
	require.True(t, ok)

	_, err := b(device.Spec{Kind: "spi", Name: "x"}, true)
	assert.Error(t, err, "port is required")

	dev, err := b(device.Spec{Kind: "spi", Name: "flash",
		Options: map[string]any{"port": "/dev/spidev0.0"}}, true)
	require.NoError(t, err)
	sim := dev.(*Sim)
	assert.Equal(t, 0, sim.cfg.Mode)
	assert.Equal(t, int64(1_000_000), sim.cfg.Hz)
	assert.Equal(t, 8, sim.cfg.Bits)
}

func TestSim_Loopback(t *testing.T) {
	d := NewSim("flash", Config{Port: "/dev/spidev0.0"})
	require.NoError(t, d.Initialize())

	got, err := d.Transfer([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestSim_RespondHook(t *testing.T) {
	d := NewSim("adc", Config{Port: "/dev/spidev0.0"})
	require.NoError(t, d.Initialize())
	d.Respond = func(w []byte) []byte { return []byte{0, 0x02, 0x55} }

	got, err := d.Transfer([]byte{1, 0x80, 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0x02, 0x55}, got)

	// Reply is clamped to the transfer length.
	got, err = d.Transfer([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)
}

func TestSim_NotInitialized(t *testing.T) {
	d := NewSim("flash", Config{Port: "/dev/spidev0.0"})
	_, err := d.Transfer([]byte{1})
	assert.Error(t, err)
}
