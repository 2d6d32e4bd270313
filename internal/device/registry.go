package device

import "fmt"

// Spec is one device stanza from the configuration file: the driver
// kind, the instance name, and the remaining keys of the stanza.
type Spec struct {
	Kind    string
	Name    string
	Options map[string]any
}

// Builder constructs a device from its configuration stanza. When
// simulate is true the builder returns the simulated variant of the
// driver instead of touching hardware.
type Builder func(spec Spec, simulate bool) (Device, error)

// Registry maps a driver kind to its builder.
type Registry map[string]Builder

// Register adds a builder to the registry. Registering the same kind
// twice is a programmer error and panics.
func (r Registry) Register(kind string, b Builder) {
	if _, ok := r[kind]; ok {
		panic(fmt.Sprintf("device builder %q is already registered", kind))
	}
	r[kind] = b
}

// Lookup returns the builder for kind.
func (r Registry) Lookup(kind string) (Builder, bool) {
	b, ok := r[kind]
	return b, ok
}

// DefaultRegistry is the registry driver packages register into from
// their init functions. The binary chooses the available drivers by
// importing their packages.
var DefaultRegistry = Registry{}

// Register adds a builder to the default registry.
func Register(kind string, b Builder) {
	DefaultRegistry.Register(kind, b)
}
