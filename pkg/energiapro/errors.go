package energiapro

import (
	"errors"
	"fmt"
)

// ErrTokenRejected signals that the API refused the current token. The
// client recovers by invalidating the cache and retrying the request once
// with a fresh token; callers only see it if the retried request fails too.
var ErrTokenRejected = errors.New("energiapro: token rejected")

// AuthReason classifies authentication failures.
type AuthReason int

const (
	// AuthInvalidCredentials means the API rejected the supplied
	// username/secret key. Not retried.
	AuthInvalidCredentials AuthReason = iota
	// AuthNetworkFailure means the login exchange could not be completed
	// after exhausting retries.
	AuthNetworkFailure
	// AuthMissingToken means authentication succeeded but the response
	// carried no token.
	AuthMissingToken
)

func (r AuthReason) String() string {
	switch r {
	case AuthInvalidCredentials:
		return "invalid credentials"
	case AuthNetworkFailure:
		return "network failure"
	case AuthMissingToken:
		return "missing token"
	default:
		return "unknown"
	}
}

// AuthError reports a failed login exchange.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("energiapro: authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("energiapro: authentication failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportKind classifies HTTP-level failures.
type TransportKind int

const (
	// TransportRateLimited means the API kept answering 429 after retries.
	TransportRateLimited TransportKind = iota
	// TransportServerFailure means the API kept answering 5xx after retries.
	TransportServerFailure
	// TransportClientFailure means the API answered a non-auth 4xx. Fatal
	// immediately, never retried.
	TransportClientFailure
	// TransportMalformedResponse means a 2xx body was not valid JSON.
	TransportMalformedResponse
	// TransportNetworkFailure means the request could not be completed at
	// the connection level after exhausting retries.
	TransportNetworkFailure
)

func (k TransportKind) String() string {
	switch k {
	case TransportRateLimited:
		return "rate limited"
	case TransportServerFailure:
		return "server failure"
	case TransportClientFailure:
		return "client failure"
	case TransportMalformedResponse:
		return "malformed response"
	case TransportNetworkFailure:
		return "network failure"
	default:
		return "unknown"
	}
}

// TransportError reports an HTTP request that failed fatally, after any
// internal retries.
type TransportError struct {
	Kind       TransportKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("energiapro: request failed (%s, status %d)", e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("energiapro: request failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("energiapro: request failed (%s)", e.Kind)
}

func (e *TransportError) Unwrap() error { return e.Err }

// API error codes documented for the upstream error envelope.
const (
	apiCodeInvalidUsername       = "10"
	apiCodeMissingPassword       = "11"
	apiCodePortalAccountDisabled = "12"
	apiCodeAPIAccountDisabled    = "15"
	apiCodeNoLpnData             = "100"
	apiCodeNoInstallations       = "110"
	apiCodeTokenCorrupted        = "210"
	apiCodeTokenInvalid          = "220"
)

// APIError is an application-level error returned inside a 2xx payload as
// an {error, errorCode} envelope.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("energiapro: api error %s: %s", e.Code, e.Message)
}

// IsTokenError reports whether the code means the token was corrupted or
// invalidated and a refresh should be attempted.
func (e *APIError) IsTokenError() bool {
	return e.Code == apiCodeTokenCorrupted || e.Code == apiCodeTokenInvalid
}

// IsCredentialError reports whether the code means the credentials or the
// account itself were rejected.
func (e *APIError) IsCredentialError() bool {
	switch e.Code {
	case apiCodeInvalidUsername, apiCodeMissingPassword, apiCodePortalAccountDisabled, apiCodeAPIAccountDisabled:
		return true
	}
	return false
}

// IsNoData reports whether the code means the query matched no data. The
// fetchers map these to empty results instead of errors.
func (e *APIError) IsNoData() bool {
	return e.Code == apiCodeNoLpnData || e.Code == apiCodeNoInstallations
}

// InvalidArgumentError reports a request argument rejected before any
// network I/O happened.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return "energiapro: invalid argument: " + e.Message
}

func invalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// WindowError reports a range fetch that failed partway through its
// sequence of sub-windows. Records from the completed windows are returned
// alongside the error; the caller decides whether to resume from the failed
// window.
type WindowError struct {
	// Window is the sub-window whose fetch failed.
	Window Window
	// Index is the zero-based position of the failed window.
	Index int
	// Completed is the number of windows fetched successfully before the
	// failure.
	Completed int
	Err       error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("energiapro: window %d (%s..%s) failed after %d completed windows: %v",
		e.Index+1, e.Window.From.Format(dateLayout), e.Window.To.Format(dateLayout), e.Completed, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }
