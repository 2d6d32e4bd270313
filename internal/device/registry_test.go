package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullDevice struct{ name string }

func (d *nullDevice) Name() string                 { return d.name }
func (d *nullDevice) Initialize() error            { return nil }
func (d *nullDevice) Release() error               { return nil }
func (d *nullDevice) RequiredResources() Resources { return Resources{} }
func (d *nullDevice) Params() map[string]string    { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := Registry{}
	reg.Register("null", func(spec Spec, simulate bool) (Device, error) {
		return &nullDevice{name: spec.Name}, nil
	})

	b, ok := reg.Lookup("null")
	require.True(t, ok)

	dev, err := b(Spec{Kind: "null", Name: "n1"}, false)
	require.NoError(t, err)
	assert.Equal(t, "n1", dev.Name())

	_, ok = reg.Lookup("ghost")
	assert.False(t, ok)
}

func TestRegistry_DuplicateKindPanics(t *testing.T) {
	reg := Registry{}
	builder := func(spec Spec, simulate bool) (Device, error) { return &nullDevice{}, nil }
	reg.Register("gpio", builder)

	assert.PanicsWithValue(t, `device builder "gpio" is already registered`, func() {
		reg.Register("gpio", builder)
	})
}

func TestResources_Empty(t *testing.T) {
	assert.True(t, Resources{}.Empty())
	assert.False(t, Resources{Pins: []int{4}}.Empty())
	assert.False(t, Resources{Ports: []string{"/dev/ttyUSB0"}}.Empty())
}
