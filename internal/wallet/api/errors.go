package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a remote failure by what the caller can do about it.
type Kind string

const (
	// KindInvalid: the server rejected the request payload or a business
	// rule failed (insufficient funds, bad OTP, self-transfer).
	KindInvalid Kind = "invalid"
	// KindUnauthorized: bad credentials.
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound: the referenced entity does not exist.
	KindNotFound Kind = "not_found"
	// KindUnavailable: transport failure, timeout or a 5xx. The request may
	// be retried by the caller's own policy. The client itself never retries.
	KindUnavailable Kind = "unavailable"
)

// Error is the uniform failure shape returned by every client operation.
// Message carries the server-supplied text when present so callers can
// surface it verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger api: %s (%s)", e.Message, e.Kind)
	}
	return fmt.Sprintf("ledger api: %s", e.Kind)
}

func kindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindInvalid
	default:
		return KindUnavailable
	}
}

// IsUnavailable reports whether err is a transient transport/server failure.
func IsUnavailable(err error) bool { return hasKind(err, KindUnavailable) }

// IsUnauthorized reports whether err is a credential failure.
func IsUnauthorized(err error) bool { return hasKind(err, KindUnauthorized) }

// IsNotFound reports whether err references a missing entity.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsInvalid reports whether err is a rejected request or business-rule
// failure.
func IsInvalid(err error) bool { return hasKind(err, KindInvalid) }

func hasKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// ServerMessage extracts the server-supplied message from err, or returns
// the empty string if err is not an API error or carried no message.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
