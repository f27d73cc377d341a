package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different classes of failure the ripper distinguishes
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeBrowser    ErrorType = "browser"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeArgument   ErrorType = "argument"
	ErrorTypeLock       ErrorType = "lock"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a failure with type information.
// Code holds the HTTP status when one was received and is 0 otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.URL != "" {
		msg += fmt.Sprintf(" for %s", e.URL)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(errType ErrorType, message string, err error) *Error {
	return &Error{Type: errType, Message: message, Err: err}
}

// WithURL sets the URL the error refers to and returns e
func (e *Error) WithURL(url string) *Error {
	e.URL = url
	return e
}

// HTTPStatus creates an error for a non-200 response
func HTTPStatus(url string, code int) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("request failed with response code %d", code),
		Code:    code,
		URL:     url,
	}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type anywhere in its chain
func Is(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Err
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}
