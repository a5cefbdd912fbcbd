package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthError marks a source whose credentials were missing, undecryptable or
// rejected. Fatal for that source only; aggregation continues without it.
type AuthError struct {
	Source string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: authentication failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: authentication failed", e.Source)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError is returned when a source rejects a call for throttling
// reasons. The core never retries; callers may.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Source)
}

// TransportError covers non-2xx responses and malformed bodies.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: bad response status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: transport failure: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExchangeReportedError is a well-formed 2xx response carrying an explicit
// error payload. Treated as an empty result for that source.
type ExchangeReportedError struct {
	Source   string
	Messages []string
}

func (e *ExchangeReportedError) Error() string {
	return fmt.Sprintf("%s reported: %s", e.Source, strings.Join(e.Messages, "; "))
}

// UnsupportedAssetError is returned before any network call when an address
// lookup (or adapter dispatch) is requested for an asset kind that has no
// implementation.
type UnsupportedAssetError struct {
	Asset string
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("asset %q is not supported", e.Asset)
}

// Normalization warnings. Non-fatal by contract: callers log them, drop the
// offending asset or symbol, and keep going.
var (
	// ErrUnsupportedSymbol signals that neither side of a raw pair matched
	// the accepted-currency set.
	ErrUnsupportedSymbol = errors.New("symbol not supported")

	// ErrPartialMatch signals that only one side of a raw pair matched.
	ErrPartialMatch = errors.New("symbol matched on one side only")
)
