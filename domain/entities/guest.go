package entities

// GuestUnit is one loadable piece of untrusted code: a validated qualified name
// and its opaque, compiled payload.
//
// Units are created at registration time and never mutated afterwards.
type GuestUnit struct {
	Name    string
	Payload []byte
}
