// Package errclass defines the structured error taxonomy for client
// operations and classifies raw transport/protocol failures into it.
package errclass

import (
	"errors"
	"fmt"
)

// Code is a stable classification for a structured error.
type Code string

const (
	CodeConfiguration   Code = "CONFIGURATION_ERROR"
	CodeTransport       Code = "TRANSPORT_ERROR"
	CodeProtocol        Code = "PROTOCOL_ERROR"
	CodeVersionMismatch Code = "VERSION_MISMATCH"

	// Discovery failures, from most specific to least.
	CodeAPINotFound            Code = "API_NOT_FOUND"
	CodeRemoteEndpointNotFound Code = "REMOTE_ENDPOINT_NOT_FOUND"
	CodeAgentNotFound          Code = "AGENT_NOT_FOUND"

	CodeUnknown Code = "UNKNOWN"
)

// Visibility controls how an error is surfaced to the user.
type Visibility string

const (
	// VisibilityBanner errors are shown in the user-facing error surface.
	VisibilityBanner Visibility = "banner"

	// VisibilityDevOnly errors are shown only when the developer console
	// is enabled; otherwise logged.
	VisibilityDevOnly Visibility = "dev_only"

	// VisibilitySilent errors are logged and never shown.
	VisibilitySilent Visibility = "silent"
)

// StructuredError is a classified error with a stable code for UI and
// observability handling. It is created at the boundary where a raw error
// is first observed and consumed once by the error-reporting path.
type StructuredError struct {
	Code       Code
	Message    string
	Visibility Visibility

	// URL is the originating endpoint, when known.
	URL string

	// StatusCode is set for HTTP transport errors.
	StatusCode int

	// Original is the raw error this one classifies, if any.
	Original error
}

func (e *StructuredError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.URL)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StructuredError) Unwrap() error {
	return e.Original
}

// IsWarning returns true for codes that never fail an operation.
func (e *StructuredError) IsWarning() bool {
	return e.Code == CodeVersionMismatch
}

// Configuration creates a configuration error. These are raised
// synchronously at client construction and abort it.
func Configuration(format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:       CodeConfiguration,
		Message:    fmt.Sprintf(format, args...),
		Visibility: VisibilityBanner,
	}
}

// Transport creates an error for a failed HTTP exchange.
func Transport(url string, statusCode int, message string) *StructuredError {
	return &StructuredError{
		Code:       CodeTransport,
		Message:    message,
		Visibility: VisibilityBanner,
		URL:        url,
		StatusCode: statusCode,
	}
}

// Protocol creates an error for a malformed or error-bearing event
// received on an agent stream.
func Protocol(url, message string) *StructuredError {
	return &StructuredError{
		Code:       CodeProtocol,
		Message:    message,
		Visibility: VisibilityBanner,
		URL:        url,
	}
}

// VersionMismatch creates the non-fatal warning for a runtime reporting a
// different protocol version than the client was built against.
func VersionMismatch(clientVersion, runtimeVersion string) *StructuredError {
	return &StructuredError{
		Code:       CodeVersionMismatch,
		Message:    fmt.Sprintf("client version %s does not match runtime version %s", clientVersion, runtimeVersion),
		Visibility: VisibilityDevOnly,
	}
}

// AgentNotFound creates a discovery error for a missing agent.
func AgentNotFound(name string) *StructuredError {
	return &StructuredError{
		Code:       CodeAgentNotFound,
		Message:    fmt.Sprintf("agent %q not found", name),
		Visibility: VisibilityBanner,
	}
}

// AsStructured extracts a *StructuredError from err's chain, or nil.
func AsStructured(err error) *StructuredError {
	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
