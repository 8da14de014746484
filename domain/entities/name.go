package entities

import "strings"

// NameSeparator joins the components of a qualified name.
const NameSeparator = "."

// SplitName breaks a qualified name into its components.
// No normalization is applied; "a..b" yields an empty middle component.
func SplitName(name string) []string {
	return strings.Split(name, NameSeparator)
}

// JoinName joins components into a qualified name.
func JoinName(components ...string) string {
	return strings.Join(components, NameSeparator)
}
