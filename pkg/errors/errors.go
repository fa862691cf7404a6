// Package errors is the gateway's typed error. Every failure that reaches a client carries a
// Code; the code decides the HTTP status, whether the message is shown, and whether details are.
package errors

import (
	stdErrors "errors"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// CodeUpstreamUnavailable means no response was received from the storefront backend.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// CodeUpstream carries a non-success backend response; its status mirrors the backend's.
	CodeUpstream Code = "UPSTREAM_ERROR"
)

// ConnectivityMessage is shown whenever the storefront backend could not be reached.
const ConnectivityMessage = "unable to reach the storefront service, please check your connection"

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, retryable bool, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, Retryable: retryable, PublicMessage: public, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:          meta(http.StatusBadRequest, false, "validation failed", true),
	CodeUnauthorized:        meta(http.StatusUnauthorized, false, "authentication required", false),
	CodeForbidden:           meta(http.StatusForbidden, false, "access denied", false),
	CodeNotFound:            meta(http.StatusNotFound, false, "resource not found", false),
	CodeConflict:            meta(http.StatusConflict, false, "conflict detected", false),
	CodeStateConflict:       meta(http.StatusUnprocessableEntity, false, "state transition disallowed", true),
	CodeIdempotency:         meta(http.StatusConflict, false, "idempotency key reused", true),
	CodeRateLimit:           meta(http.StatusTooManyRequests, false, "rate limit exceeded", false),
	CodeInternal:            meta(http.StatusInternalServerError, true, "internal server error", false),
	CodeDependency:          meta(http.StatusServiceUnavailable, true, "dependency unavailable", true),
	CodeUpstreamUnavailable: meta(http.StatusServiceUnavailable, true, ConnectivityMessage, false),
	CodeUpstream:            meta(http.StatusBadGateway, false, "the storefront service could not complete the request", true),
}

// MetadataFor falls back to the INTERNAL_ERROR entry for codes it does not know.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is safe to use through a nil pointer; a nil *Error reads as INTERNAL_ERROR.
type Error struct {
	code    Code
	message string
	details any
	cause   error
	status  int
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap is New with a cause; a nil cause is allowed.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// WithHTTPStatus overrides the status derived from the code.
func (e *Error) WithHTTPStatus(status int) *Error {
	if e != nil {
		e.status = status
	}
	return e
}

func (e *Error) HTTPStatus() int {
	switch {
	case e == nil:
		return http.StatusInternalServerError
	case e.status > 0:
		return e.status
	}
	return MetadataFor(e.code).HTTPStatus
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain has one of codes.
func IsCode(err error, codes ...Code) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	for _, c := range codes {
		if typed.code == c {
			return true
		}
	}
	return false
}
