// Package naming validates qualified names before they may be registered as
// guest units. Validation is pure: it never registers, coerces, or truncates.
package naming
