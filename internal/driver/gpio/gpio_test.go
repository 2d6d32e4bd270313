package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/device"
)

func TestBuilder_Registered(t *testing.T) {
	spec := device.Spec{
		Kind: "gpio",
		Name: "relay",
		Options: map[string]any{
			"pin":       17,
			"direction": "out",
			"initial":   1,
		},
	}
	b, ok := device.DefaultRegistry.Lookup("gpio")
	require.True(t, ok)

	dev, err := b(spec, true)
	require.NoError(t, err)
	sim, ok := dev.(*Sim)
	require.True(t, ok)
	assert.Equal(t, "relay", sim.Name())
	assert.Equal(t, device.Resources{Pins: []int{17}}, sim.RequiredResources())
}

func TestBuilder_MissingPin(t *testing.T) {
	b, _ := device.DefaultRegistry.Lookup("gpio")
	_, err := b(device.Spec{Kind: "gpio", Name: "x"}, true)
	assert.Error(t, err)
}

func TestSim_WriteReadToggle(t *testing.T) {
	d := NewSim("led", Config{Pin: 4, Direction: "out", Initial: 1})
	require.NoError(t, d.Initialize())

	v, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, d.Write(0))
	v, _ = d.Read()
	assert.Equal(t, 0, v)

	require.NoError(t, d.Toggle())
	v, _ = d.Read()
	assert.Equal(t, 1, v)
}

func TestSim_GuardsDirectionAndLifecycle(t *testing.T) {
	d := NewSim("button", Config{Pin: 22, Direction: "in"})

	_, err := d.Read()
	assert.Error(t, err, "read before initialize")

	require.NoError(t, d.Initialize())
	assert.Error(t, d.Write(1), "write to an input pin")

	require.NoError(t, d.Release())
	_, err = d.Read()
	assert.Error(t, err, "read after release")
}

func TestSim_LogToggler(t *testing.T) {
	d := NewSim("led", Config{Pin: 4, Direction: "out"})

	var toggler device.LogToggler = d
	toggler.EnableLogging()
	assert.True(t, d.Verbose())
	toggler.DisableLogging()
	assert.False(t, d.Verbose())
}
