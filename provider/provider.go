// Package provider defines the uniform contract for LLM provider adapters:
// initialize with configuration, compute transport headers, send one request
// through an injected Transport, and report a single terminal result via
// callback. Implementations live in subpackages (openai, ollama).
package provider

import (
	"context"
	"errors"

	"github.com/graphtran/graphtran"
)

// Sentinel errors for adapter implementations. Callers should use errors.Is.
var (
	ErrNotInitialized = errors.New("provider: service not initialized")
	ErrFaulted        = errors.New("provider: service initialization failed, re-Initialize required")
	ErrInvalidConfig  = errors.New("provider: invalid provider configuration")
)

// Callback receives the terminal result of one request: either the raw
// provider response body or an error-shaped payload ({"error": ...}).
// It is invoked exactly once per SendRequest call.
type Callback func(body string)

// Transport performs the network call for one request and resolves done
// exactly once with the response body or an error-shaped payload. Timeout and
// retry policy belong to the transport, not the adapter.
type Transport interface {
	Post(ctx context.Context, endpoint, authToken, payload string, done *Completion)
}

// HeaderCarrier is optional. Transports implementing it receive the adapter's
// full provider headers (content type, organization) at Initialize time.
type HeaderCarrier interface {
	SetExtraHeaders(headers map[string]string)
}

// Service is the provider adapter contract. A Service starts uninitialized;
// Initialize transitions it to ready or faulted. SendRequest outside the
// ready state completes the callback synchronously with an error payload and
// performs no transport call.
type Service interface {
	Initialize(cfg graphtran.ProviderConfig) error
	SendRequest(ctx context.Context, userContent, systemContent string, cb Callback)
	Headers() map[string]string
	EffectiveConfig() (endpoint, authToken string, supportsSystemRole bool)
}

// State is the adapter lifecycle state.
type State int

// Adapter lifecycle states.
const (
	StateUninitialized State = iota
	StateReady
	StateFaulted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
