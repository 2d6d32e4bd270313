package rig

import "fmt"

// GroupRegistry holds test groups in registration order, which is also
// their execution order. Suites register themselves from init
// functions; the binary picks the available suites by importing their
// packages.
type GroupRegistry struct {
	groups []*TestGroup
	names  map[string]bool
}

// NewGroupRegistry creates an empty registry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{names: make(map[string]bool)}
}

// Register appends a group. Registering two groups with the same name
// is a programmer error and panics.
func (r *GroupRegistry) Register(g *TestGroup) {
	if r.names[g.Name()] {
		panic(fmt.Sprintf("test group %q is already registered", g.Name()))
	}
	r.names[g.Name()] = true
	r.groups = append(r.groups, g)
}

// Groups returns the registered groups in registration order.
func (r *GroupRegistry) Groups() []*TestGroup {
	return r.groups
}

// Len returns the number of registered groups.
func (r *GroupRegistry) Len() int {
	return len(r.groups)
}

// defaultGroups is the registry suite packages register into.
var defaultGroups = NewGroupRegistry()

// Register adds a group to the default registry.
func Register(g *TestGroup) {
	defaultGroups.Register(g)
}

// Registered returns the default registry's groups in registration
// order.
func Registered() []*TestGroup {
	return defaultGroups.Groups()
}
