package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches (via errors.Is) any RemoteError of kind KindNotFound.
var ErrNotFound = errors.New("resource not found")

// ErrorKind classifies a failure reported by the management API.
type ErrorKind int

const (
	// KindOther covers auth, validation, throttling and server failures.
	KindOther ErrorKind = iota
	KindNotFound
)

func (k ErrorKind) String() string {
	if k == KindNotFound {
		return "NotFound"
	}
	return "Other"
}

// RemoteError is a non-2xx response from the management API.
type RemoteError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

// NewRemoteError classifies a response status into a RemoteError.
func NewRemoteError(statusCode int, message string) *RemoteError {
	kind := KindOther
	if statusCode == http.StatusNotFound {
		kind = KindNotFound
	}
	return &RemoteError{Kind: kind, StatusCode: statusCode, Message: message}
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsNotFound reports whether err is, or wraps, a NotFound failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
