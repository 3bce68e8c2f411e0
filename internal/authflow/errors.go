package authflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates the provider's OAuth client settings
	// are missing; the flow cannot even begin.
	ErrNotConfigured = errors.New("oauth provider is not configured")
	// ErrInvalidState indicates a callback carried a state token that
	// matches no live authorization request (forged, unknown, or
	// already consumed).
	ErrInvalidState = errors.New("unknown or already used state token")
	// ErrStateExpired indicates the authorization request's deadline
	// passed before the callback arrived.
	ErrStateExpired = errors.New("authorization request expired")
	// ErrNoConnection indicates no credential was ever stored for the
	// provider.
	ErrNoConnection = errors.New("no connection for provider")
	// ErrRefreshFailed indicates a stored credential was expired and
	// could not be refreshed.
	ErrRefreshFailed = errors.New("credential refresh failed")
)

// ProviderError wraps a failure from the external authorization
// provider during a token exchange or refresh.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
