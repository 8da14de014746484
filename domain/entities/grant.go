package entities

// Policy is the persisted portion of a sandbox configuration:
// reserved namespace prefixes and granted host symbols.
type Policy struct {
	Reserved []string `json:"reserved,omitempty" yaml:"reserved,omitempty"`
	Allowed  []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
}

// IsEmpty returns true if the policy neither reserves nor allows anything.
func (p *Policy) IsEmpty() bool {
	return p == nil || (len(p.Reserved) == 0 && len(p.Allowed) == 0)
}

// Merge unions other into p, keeping the first occurrence of each entry.
func (p *Policy) Merge(other *Policy) {
	if other == nil {
		return
	}
	p.Reserved = appendUnique(p.Reserved, other.Reserved...)
	p.Allowed = appendUnique(p.Allowed, other.Allowed...)
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

// GrantRequest is a host name some guest units import without a grant.
type GrantRequest struct {
	// Name is the qualified host name that would be denied.
	Name string

	// Requesters are the guest units importing Name, sorted.
	Requesters []string
}
