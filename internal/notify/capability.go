package notify

// StaticCapabilities is a fixed capability answer, set from config or
// by the daemon when it owns the process lifetime.
type StaticCapabilities struct {
	Exact bool
}

// ExactTimersAvailable implements Capabilities.
func (c StaticCapabilities) ExactTimersAvailable() bool {
	return c.Exact
}

// CapabilityFunc adapts a function to Capabilities so availability can
// be probed live at each schedule call.
type CapabilityFunc func() bool

// ExactTimersAvailable implements Capabilities.
func (f CapabilityFunc) ExactTimersAvailable() bool {
	return f()
}
