// Package errors maps site failures to HTTP responses.
package errors

import (
	stderrors "errors"
	"net/http"

	domainerrors "github.com/ffonons/site/internal/platform/errors"
)

// Kind classifies web failures that do not come from the domain layer.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindUnavailable  Kind = "unavailable"
)

// Error is a typed web application failure.
type Error struct {
	Kind    Kind
	Message string
}

// Error renders the human-readable message.
func (e Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// E builds a typed Error.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// HTTPStatus maps an error to an HTTP status code. Domain errors use their
// code mapping; untyped errors are server errors.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInvalidInput:
			return http.StatusBadRequest
		case KindNotFound:
			return http.StatusNotFound
		case KindUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	var domainErr *domainerrors.Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Code returns a machine-readable code for err.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var appErr Error
	if stderrors.As(err, &appErr) {
		return string(appErr.Kind)
	}
	return string(domainerrors.GetCode(err))
}

// PublicMessage returns a message safe to show to visitors. Server errors
// never expose their cause.
func PublicMessage(err error) string {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError || err == nil {
		return http.StatusText(status)
	}
	var domainErr *domainerrors.Error
	if stderrors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	var appErr Error
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return http.StatusText(status)
}
