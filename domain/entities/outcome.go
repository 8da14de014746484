package entities

import "fmt"

// OutcomeKind tags the result of a name resolution.
type OutcomeKind int

// The zero value is OutcomeDenied so an uninitialized Outcome fails closed.
const (
	OutcomeDenied OutcomeKind = iota
	OutcomeGuest
	OutcomeHost
)

// String returns the lower-case name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeGuest:
		return "guest"
	case OutcomeHost:
		return "host"
	case OutcomeDenied:
		return "denied"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Outcome is the result of resolving a single name.
//
//   - Guest: Payload holds the registered unit's bytes.
//   - Host: resolution must be delegated to the trusted host source.
//   - Denied: the name is neither a guest unit nor an allowed host symbol.
type Outcome struct {
	Name    string
	Payload []byte
	Kind    OutcomeKind
}

// GuestOutcome creates an Outcome satisfied by a guest unit.
func GuestOutcome(name string, payload []byte) Outcome {
	return Outcome{Kind: OutcomeGuest, Name: name, Payload: payload}
}

// HostOutcome creates an Outcome delegated to the host.
func HostOutcome(name string) Outcome {
	return Outcome{Kind: OutcomeHost, Name: name}
}

// DeniedOutcome creates a refusal for name.
func DeniedOutcome(name string) Outcome {
	return Outcome{Kind: OutcomeDenied, Name: name}
}

// IsGuest returns true if the outcome is satisfied by a guest unit.
func (o Outcome) IsGuest() bool {
	return o.Kind == OutcomeGuest
}

// IsHost returns true if the outcome is delegated to the host.
func (o Outcome) IsHost() bool {
	return o.Kind == OutcomeHost
}

// IsDenied returns true if the resolution was refused.
func (o Outcome) IsDenied() bool {
	return o.Kind == OutcomeDenied
}

// String renders the outcome as "kind(name)".
func (o Outcome) String() string {
	return fmt.Sprintf("%s(%s)", o.Kind, o.Name)
}
