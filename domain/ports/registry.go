package ports

// GuestLookup is the read side of the guest registry used during resolution.
type GuestLookup interface {
	// Contains returns true if a guest unit is registered under name.
	Contains(name string) bool

	// Get returns the payload registered under name.
	// The returned bytes are shared and must not be modified.
	Get(name string) ([]byte, bool)
}

// CapabilityLookup is the read side of the host capability registry.
type CapabilityLookup interface {
	// IsAllowed returns true if name is an exact member of the capability set.
	IsAllowed(name string) bool
}
