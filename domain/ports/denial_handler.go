package ports

// DenialHandler is called when a resolution is refused.
// Implementations can log, collect metrics, or take other actions.
type DenialHandler interface {
	// OnDenial is called once per refused resolution.
	// name: the refused qualified name
	// requester: the guest unit whose reference triggered the resolution, or ""
	// reason: human-readable denial reason
	OnDenial(name, requester, reason string)
}
