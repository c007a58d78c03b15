package core

import "fmt"

// FailureKind classifies an upstream provider failure. The fetch
// orchestrator branches on the kind, so gateways must map every failure
// mode onto exactly one of these values.
type FailureKind string

const (
	// KindUnavailable covers network errors, timeouts and malformed payloads.
	KindUnavailable FailureKind = "upstream_unavailable"
	// KindInvalidSymbol means the provider rejected the requested symbol.
	KindInvalidSymbol FailureKind = "invalid_symbol"
	// KindRateLimited means the provider throttled the request.
	KindRateLimited FailureKind = "rate_limited"
)

// UpstreamError is the uniform failure value returned by upstream gateways.
// It is an ordinary error value, not a panic or sentinel: callers inspect
// Kind to drive fallback behavior.
type UpstreamError struct {
	Kind     FailureKind
	Provider string
	Message  string
	// Err holds the underlying cause for logging; never exposed to clients.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the error unwrapping interface.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUnavailableError creates an upstream-unavailable error.
func NewUnavailableError(provider, message string, err error) *UpstreamError {
	return &UpstreamError{Kind: KindUnavailable, Provider: provider, Message: message, Err: err}
}

// NewInvalidSymbolError creates an invalid-symbol error.
func NewInvalidSymbolError(provider, symbol string) *UpstreamError {
	return &UpstreamError{Kind: KindInvalidSymbol, Provider: provider, Message: "invalid stock symbol: " + symbol}
}

// NewRateLimitedError creates a rate-limited error.
func NewRateLimitedError(provider, message string) *UpstreamError {
	return &UpstreamError{Kind: KindRateLimited, Provider: provider, Message: message}
}

// Envelope error codes surfaced to clients.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeMissingSymbols     = "MISSING_SYMBOLS"
	CodeExternalAPIFailure = "EXTERNAL_API_FAILURE"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)
