package devman

import "fmt"

// Registry tracks which device owns each exclusive resource. Pins and
// ports are separate namespaces. A key maps to at most one device at a
// time, and entries exist only while the owning device is initialized.
//
// The run is single-threaded, so the registry carries no lock; the
// conflict check on claim is the only cross-device coordination.
type Registry struct {
	pins  map[int]string
	ports map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pins:  make(map[int]string),
		ports: make(map[string]string),
	}
}

// ClaimPin reserves a GPIO pin for owner. Returns a conflict error if
// another device already holds it.
func (r *Registry) ClaimPin(pin int, owner string) error {
	if current, ok := r.pins[pin]; ok {
		return NewConflictError(fmt.Sprintf("GPIO pin %d", pin), owner, current)
	}
	r.pins[pin] = owner
	return nil
}

// ClaimPort reserves a device port for owner. Returns a conflict error
// if another device already holds it.
func (r *Registry) ClaimPort(port, owner string) error {
	if current, ok := r.ports[port]; ok {
		return NewConflictError(fmt.Sprintf("port '%s'", port), owner, current)
	}
	r.ports[port] = owner
	return nil
}

// PinOwner returns the device holding pin, if any.
func (r *Registry) PinOwner(pin int) (string, bool) {
	owner, ok := r.pins[pin]
	return owner, ok
}

// PortOwner returns the device holding port, if any.
func (r *Registry) PortOwner(port string) (string, bool) {
	owner, ok := r.ports[port]
	return owner, ok
}

// Empty reports whether no resources are reserved.
func (r *Registry) Empty() bool {
	return len(r.pins) == 0 && len(r.ports) == 0
}

// Reset drops every reservation unconditionally. Called at the end of
// release regardless of how many Release calls failed.
func (r *Registry) Reset() {
	r.pins = make(map[int]string)
	r.ports = make(map[string]string)
}
