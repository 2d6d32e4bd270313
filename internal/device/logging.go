package device

// Logging is an embeddable LogToggler implementation for drivers with
// per-operation logging. Drivers consult Verbose before emitting their
// operation traces.
type Logging struct {
	verbose bool
}

// EnableLogging turns the driver's operation trace on.
func (l *Logging) EnableLogging() { l.verbose = true }

// DisableLogging turns the driver's operation trace off.
func (l *Logging) DisableLogging() { l.verbose = false }

// Verbose reports whether the trace is on.
func (l *Logging) Verbose() bool { return l.verbose }
