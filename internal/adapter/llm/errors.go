package llm

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure. Every vendor-specific HTTP status or
// transport error is translated into exactly one of these at the client
// boundary; no vendor-shaped error crosses it.
type Kind string

const (
	KindAuthentication      Kind = "authentication"
	KindRateLimit           Kind = "rate_limit"
	KindUnavailable         Kind = "unavailable"
	KindNotFound            Kind = "not_found"
	KindMalformedResponse   Kind = "malformed_response"
	KindUnsupportedProvider Kind = "unsupported_provider"
	KindProvider            Kind = "provider"
)

// Error is a provider failure with a uniform kind and a message suitable
// for direct display.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the taxonomy kind of err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// translateHTTP maps a vendor HTTP status onto the uniform taxonomy.
// detail is the vendor's own error message, used where the status alone
// is not descriptive.
func translateHTTP(vendor string, status int, detail string) *Error {
	switch status {
	case 401:
		return Errorf(KindAuthentication, "invalid %s API key", vendor)
	case 429:
		return Errorf(KindRateLimit, "%s rate limit exceeded, please try again later", vendor)
	case 500, 503:
		return Errorf(KindUnavailable, "%s is temporarily unavailable, please try again later", vendor)
	case 404:
		return Errorf(KindNotFound, "%s: not found: %s", vendor, detail)
	default:
		return Errorf(KindProvider, "%s error [%d]: %s", vendor, status, detail)
	}
}
