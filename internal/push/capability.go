package push

// Capability is the single consolidated answer to "can this device receive
// push". It is computed once by the subscription manager and consumed
// everywhere else instead of re-deriving platform checks ad hoc.
type Capability int

const (
	// CapabilityUnsupported means the runtime has no usable push or
	// notification-permission API.
	CapabilityUnsupported Capability = iota
	// CapabilityNeedsInstall means push works only once the app runs in
	// installed/standalone mode (iOS-family restriction).
	CapabilityNeedsInstall
	// CapabilitySupported means push can be set up right now.
	CapabilitySupported
)

func (c Capability) String() string {
	switch c {
	case CapabilityNeedsInstall:
		return "needs-install"
	case CapabilitySupported:
		return "supported"
	default:
		return "unsupported"
	}
}

// DetectCapability evaluates, in order: does the runtime expose the push
// APIs at all, and if the platform is restricted, is the app installed.
func DetectCapability(p Platform) Capability {
	if !p.SupportsPush() {
		return CapabilityUnsupported
	}
	if p.Restricted() && !p.Standalone() {
		return CapabilityNeedsInstall
	}
	return CapabilitySupported
}
