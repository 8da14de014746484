package entities

import "fmt"

// ErrorDetail provides structured error information for logs and CLI output.
// Types: "naming", "reserved", "denied", "unresolved", "io", "state",
// "config", "link" and "internal" for errors of no known type.
type ErrorDetail struct {
	// Wrapped is the detail of the underlying error, for error chains.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	// Details contains additional error context.
	Details map[string]any `json:"details,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code, usually the offending name.
	Code string `json:"code,omitempty"`

	// IsNotFound indicates the name is unknown rather than refused.
	IsNotFound bool `json:"is_not_found,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// Root returns the innermost detail of the chain: the failure that started it.
func (e *ErrorDetail) Root() *ErrorDetail {
	if e == nil {
		return nil
	}
	for e.Wrapped != nil {
		e = e.Wrapped
	}
	return e
}
