// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fawkes

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrServerClosed is returned by Server.ListenAndServe after Stop has
	// been called.
	ErrServerClosed = errors.New("fawkes: server closed")

	// ErrExecutorPoolSize indicates a pool was constructed with a
	// non-positive worker count.
	ErrExecutorPoolSize = errors.New("fawkes: executor pool size must be greater than zero")

	// ErrHandlerNil indicates a route was registered with a nil handler.
	ErrHandlerNil = errors.New("fawkes: handler must not be nil")
)

// InvalidRouteError reports a route registration conflict detected by the
// path tree. It is returned by Router.Handle and friends; it is never
// surfaced to an HTTP client since registration happens before serving.
type InvalidRouteError struct {
	// Reason is a short machine-matchable label for the conflict, e.g.
	// "duplicate", "wildcard conflict", "invalid wildcard".
	Reason string

	// Message is the full human-readable description of the conflict.
	Message string
}

func (e *InvalidRouteError) Error() string {
	return e.Message
}

func invalidRoute(reason, format string, args ...any) *InvalidRouteError {
	return &InvalidRouteError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// HTTPError is a typed error carrying an HTTP status and an optional
// application-specific error code. Handlers return an *HTTPError (or any
// error, which is treated as a 500) to short-circuit with a JSON error body.
type HTTPError struct {
	Status  int    // HTTP status code to send
	Message string // human-readable message, serialized under "error.message"
	Code    int    // optional application error code; 0 means "absent"
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError builds an HTTPError with no application code.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// NewHTTPErrorCode builds an HTTPError carrying an application error code.
func NewHTTPErrorCode(status int, message string, code int) *HTTPError {
	return &HTTPError{Status: status, Message: message, Code: code}
}

// errorBody is the wire shape of a dispatch-error JSON response, per the
// catch-all error contract:
//
//	{"error": {"message": "<text>", "code": <int, optional>}}
type errorBody struct {
	Error errorBodyInner `json:"error"`
}

type errorBodyInner struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// asHTTPError classifies an arbitrary error returned from a user handler (or
// recovered from a panic) into the status/body pair the serve loop writes.
// Any error that isn't already an *HTTPError becomes a 500 carrying the
// error's message.
func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return NewHTTPError(http.StatusInternalServerError, err.Error())
}

func errNotFound() *HTTPError {
	return NewHTTPError(http.StatusNotFound, "Unknown resource")
}
