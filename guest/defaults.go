package guest

// defaultReserved are the namespaces of the substrate's trusted built-ins.
// Matching is a raw string prefix test, so "org.w3c.dom." also blocks
// "org.w3c.dom.events.Event" but not "org.w3c.domx.Foo".
var defaultReserved = []string{
	"java.",
	"javax.",
	"jdk.",
	"sun.",
	"com.sun.",
	"org.ietf.jgss.",
	"org.w3c.dom.",
	"org.xml.sax.",
	"wasi_",
}

// DefaultReserved returns a copy of the prefixes seeded by ReserveDefaults.
func DefaultReserved() []string {
	out := make([]string, len(defaultReserved))
	copy(out, defaultReserved)
	return out
}
