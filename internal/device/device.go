// Package device defines the capability contract between the resource
// manager and peripheral/protocol drivers, and the registry through
// which driver packages make themselves constructible from
// configuration.
package device

// Resources declares the exclusive hardware a device needs before it
// may initialize: BCM pin numbers and device ports (tty paths, bus
// device files). Pins and ports are separate namespaces; at most one
// device may own a given key at a time.
type Resources struct {
	Pins  []int
	Ports []string
}

// Empty reports whether the device claims no exclusive hardware. Such
// devices never participate in conflict detection.
func (r Resources) Empty() bool {
	return len(r.Pins) == 0 && len(r.Ports) == 0
}

// Device is the contract every peripheral and protocol driver
// satisfies. Once handed to the manager a Device is owned exclusively;
// instances are never shared between runs.
type Device interface {
	// Name returns the configured instance name, unique within a run.
	Name() string

	// Initialize acquires the underlying hardware. Called at most once
	// per run, and only after the device's declared resources have been
	// reserved. An error aborts the run after full rollback.
	Initialize() error

	// Release returns the hardware. Best effort: the manager logs
	// errors and keeps releasing the remaining devices.
	Release() error

	// RequiredResources lists the pins and ports this device owns
	// while initialized.
	RequiredResources() Resources

	// Params reports the initialized settings, for logging.
	Params() map[string]string
}

// LogToggler is the optional capability of drivers with per-operation
// logging. The manager toggles it best effort; devices that do not
// implement it are silently skipped.
type LogToggler interface {
	EnableLogging()
	DisableLogging()
}
