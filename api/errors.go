package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Message is the server's text and may be empty.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// UnexpectedError covers everything else, e.g. a 2xx with a body we can't read.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return "unexpected: " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// MessageOf returns the server-provided message carried by err, if any.
func MessageOf(err error) (string, bool) {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message, true
	}
	return "", false
}
