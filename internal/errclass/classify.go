package errclass

import (
	"context"
	"errors"
	"strings"
)

// Discovery-failure markers, matched against raw error text. The messages
// come from net/http and the OS resolver, so substring matching is the only
// discrimination available at this boundary.
var (
	remoteEndpointMarkers = []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"dial tcp",
	}
	apiMarkers = []string{
		"status 401",
		"status 403",
		"invalid api key",
		"unauthorized",
	}
	agentMarkers = []string{
		"agent not found",
		"no agent named",
	}
	abortMarkers = []string{
		"context canceled",
		"request canceled",
		"operation was aborted",
		"signal is aborted",
		"use of closed network connection",
	}
)

// Classify maps a raw error into a structured one.
//
// Already-structured errors pass through unchanged. Otherwise the raw text
// is matched against known discovery-failure markers, falling back to an
// UNKNOWN-coded wrapper.
func Classify(err error) *StructuredError {
	if err == nil {
		return nil
	}
	if se := AsStructured(err); se != nil {
		return se
	}

	text := strings.ToLower(err.Error())

	for _, marker := range agentMarkers {
		if strings.Contains(text, marker) {
			return &StructuredError{
				Code:       CodeAgentNotFound,
				Message:    err.Error(),
				Visibility: VisibilityBanner,
				Original:   err,
			}
		}
	}
	for _, marker := range remoteEndpointMarkers {
		if strings.Contains(text, marker) {
			return &StructuredError{
				Code:       CodeRemoteEndpointNotFound,
				Message:    err.Error(),
				Visibility: VisibilityBanner,
				Original:   err,
			}
		}
	}
	for _, marker := range apiMarkers {
		if strings.Contains(text, marker) {
			return &StructuredError{
				Code:       CodeAPINotFound,
				Message:    err.Error(),
				Visibility: VisibilityBanner,
				Original:   err,
			}
		}
	}

	return &StructuredError{
		Code:       CodeUnknown,
		Message:    err.Error(),
		Visibility: VisibilityBanner,
		Original:   err,
	}
}

// IsAbort reports whether err is a byproduct of cancelling the underlying
// operation. Abort-induced errors are discarded entirely: not reported,
// not deduplicated.
func IsAbort(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, marker := range abortMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
