// Package capability holds the host capability registry: the explicit
// allow-list of host names guest units may reference.
//
// Membership is exact string equality. There are no wildcards and no prefix
// matching, so allowing "java.util.Map" does not allow "java.util.Map.Entry".
package capability
