package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any HTTPError with status 404.
var ErrNotFound = errors.New("not found")

// NetworkError means the request never completed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response, or a 2xx response whose body reported
// success false.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}

	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, msg)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ParseError means the body was not the JSON the call expected.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Message returns the text to show a user for err.
func Message(err error) string {
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return "Network error. Check the connection and try again."
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		return "The server sent an unexpected response."
	}

	if err == nil {
		return ""
	}

	return err.Error()
}
