// Package errors provides domain-specific error types for the sandbox.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/sieve/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

var (
	// ErrDenied matches every refused resolution (see ProhibitedError).
	ErrDenied = stdErrors.New("resolution denied")

	// ErrFrozen matches every mutation attempted after the configuration phase.
	ErrFrozen = stdErrors.New("registry is frozen")
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail. New error types only need to implement this
// interface without modifying ToErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// Violation identifies the naming rule a candidate guest name broke.
type Violation string

// Naming rule violations, in the order the rules are checked.
const (
	ViolationEmpty           Violation = "empty"
	ViolationDepth           Violation = "depth"
	ViolationEmptyComponent  Violation = "empty_component"
	ViolationNamespaceCase   Violation = "namespace_case"
	ViolationTerminalCase    Violation = "terminal_case"
	ViolationKeyword         Violation = "keyword"
	ViolationIdentifierStart Violation = "identifier_start"
	ViolationIdentifierPart  Violation = "identifier_part"
)

// InvalidNameError reports a candidate guest name that fails a naming rule.
type InvalidNameError struct {
	Name      string    // The offending name, verbatim
	Violation Violation // The rule that failed
	Component string    // Offending component, if the rule is per-component
	Detail    string    // Human-readable description of the violation
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid guest name %q: %s", e.Name, e.Detail)
}

// ToErrorDetail implements DetailedError.
func (e *InvalidNameError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "naming", Code: string(e.Violation)}
	detail.Details = map[string]any{"name": e.Name}
	if e.Component != "" {
		detail.Details["component"] = e.Component
	}
	return detail
}

// ReservedNameError reports a guest name that falls inside a reserved namespace.
// It signals a conflict with trusted namespaces rather than a malformed name.
type ReservedNameError struct {
	Name   string
	Prefix string // The reserved prefix that matched
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("guest name %q is reserved (prefix %q)", e.Name, e.Prefix)
}

// ToErrorDetail implements DetailedError.
func (e *ReservedNameError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "reserved",
		Code:    e.Prefix,
		Details: map[string]any{"name": e.Name, "prefix": e.Prefix},
	}
}

// ProhibitedError reports a resolution refused because the name is neither a
// guest unit nor an allowed host symbol. It is either a missing grant or an
// attempted sandbox escape and should be logged loudly.
type ProhibitedError struct {
	Name      string
	Requester string // Guest unit whose reference triggered the resolution, if known
}

func (e *ProhibitedError) Error() string {
	if e.Requester != "" {
		return fmt.Sprintf("blocked attempt to access restricted name %q (requested by %s)", e.Name, e.Requester)
	}
	return fmt.Sprintf("blocked attempt to access restricted name %q", e.Name)
}

// Is reports whether target is ErrDenied.
func (e *ProhibitedError) Is(target error) bool {
	return target == ErrDenied
}

// ToErrorDetail implements DetailedError.
func (e *ProhibitedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "denied",
		Code:    e.Name,
		Details: map[string]any{"name": e.Name, "requester": e.Requester},
	}
}

// UnresolvedError reports a name that passed the sandbox but could not be
// satisfied, such as a granted host symbol without an implementation.
// It is an ordinary missing-symbol error, not a denial.
type UnresolvedError struct {
	Name      string
	Requester string
	Reason    string
}

func (e *UnresolvedError) Error() string {
	if e.Requester != "" {
		return fmt.Sprintf("unresolved name %q (requested by %s): %s", e.Name, e.Requester, e.Reason)
	}
	return fmt.Sprintf("unresolved name %q: %s", e.Name, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *UnresolvedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "unresolved", Code: e.Name, IsNotFound: true}
}

// LoadError reports an I/O failure while reading guest units.
// It is fatal to the configuration phase.
type LoadError struct {
	Err  error
	Path string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load guest units from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load guest units: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "io", Code: e.Path}
}

// FrozenError reports a mutation attempted after the configuration phase ended.
type FrozenError struct {
	Component string // e.g. "guest registry"
	Operation string // e.g. "reserve"
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("cannot %s: %s is frozen", e.Operation, e.Component)
}

// Is reports whether target is ErrFrozen.
func (e *FrozenError) Is(target error) bool {
	return target == ErrFrozen
}

// ToErrorDetail implements DetailedError.
func (e *FrozenError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: e.Operation}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// LinkError reports a failure to link a guest unit into the execution substrate.
// Cycle is set when the failure is a circular reference between guest units.
type LinkError struct {
	Err   error
	Name  string
	Cycle []string
}

func (e *LinkError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("link %s failed: import cycle %s", e.Name, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("link %s failed: %v", e.Name, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LinkError) ToErrorDetail() *entities.ErrorDetail {
	if len(e.Cycle) > 0 {
		return &entities.ErrorDetail{
			Message: e.Error(),
			Type:    "link",
			Code:    e.Name,
			Details: map[string]any{"cycle": e.Cycle},
		}
	}
	detail := &entities.ErrorDetail{Message: fmt.Sprintf("link %s failed", e.Name), Type: "link", Code: e.Name}
	if e.Err != nil {
		detail.Wrapped = ToErrorDetail(e.Err)
	}
	return detail
}
