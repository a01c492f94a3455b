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
	"context"
	"net/http"
)

// Decision is returned from a middleware hook to control whether the
// remaining pipeline runs.
type Decision int

const (
	// Proceed lets the pipeline continue to the next stage.
	Proceed Decision = iota
	// Abort short-circuits the remaining stages. An aborting PreHandle
	// skips the handler and the post-handle phase of the same scope; an
	// aborting PostHandle only skips later post-handle stages.
	Abort
)

// HandlerFunc is a route handler. Returning a non-nil error (typically an
// *HTTPError) causes the error to be translated into a response; the
// handler never writes a response directly on an error path.
type HandlerFunc func(ctx context.Context, req *Request, resp *Response) error

// PreHandler runs before the route handler. A middleware value that wants a
// pre-handle hook implements this interface.
type PreHandler interface {
	PreHandle(ctx context.Context, req *Request, resp *Response) (Decision, error)
}

// PostHandler runs after the route handler. A middleware value that wants a
// post-handle hook implements this interface.
type PostHandler interface {
	PostHandle(ctx context.Context, req *Request, resp *Response) (Decision, error)
}

// Middleware is any value implementing PreHandler and/or PostHandler. A
// value implementing neither is accepted but has no effect.
type Middleware any

// PreHandleFunc adapts a bare function to a PreHandler that implements
// nothing else.
type PreHandleFunc func(ctx context.Context, req *Request, resp *Response) (Decision, error)

// PreHandle implements PreHandler.
func (f PreHandleFunc) PreHandle(ctx context.Context, req *Request, resp *Response) (Decision, error) {
	return f(ctx, req, resp)
}

// PostHandleFunc adapts a bare function to a PostHandler that implements
// nothing else.
type PostHandleFunc func(ctx context.Context, req *Request, resp *Response) (Decision, error)

// PostHandle implements PostHandler.
func (f PostHandleFunc) PostHandle(ctx context.Context, req *Request, resp *Response) (Decision, error) {
	return f(ctx, req, resp)
}

// routeHandler is the fully-composed callable stored at a tree leaf: a
// route's own middleware wrapped around its handler. Errors returned from
// it are middleware errors and propagate to the session loop unchanged;
// handler errors are already translated into resp by the time it returns.
type routeHandler func(ctx context.Context, req *Request, resp *Response) (Decision, error)

// chain is an ordered list of middleware evaluated as a single pre/post
// pair: pre-handle hooks run forward, post-handle hooks run in reverse.
type chain []Middleware

func (c chain) preHandle(ctx context.Context, req *Request, resp *Response) (Decision, error) {
	for _, mw := range c {
		ph, ok := mw.(PreHandler)
		if !ok {
			continue
		}
		decision, err := ph.PreHandle(ctx, req, resp)
		if err != nil {
			return Proceed, err
		}
		if decision == Abort {
			return Abort, nil
		}
	}
	return Proceed, nil
}

func (c chain) postHandle(ctx context.Context, req *Request, resp *Response) (Decision, error) {
	for i := len(c) - 1; i >= 0; i-- {
		ph, ok := c[i].(PostHandler)
		if !ok {
			continue
		}
		decision, err := ph.PostHandle(ctx, req, resp)
		if err != nil {
			return Proceed, err
		}
		if decision == Abort {
			return Abort, nil
		}
	}
	return Proceed, nil
}

// composeRoute wraps handler with its own middleware chain into a single
// routeHandler: chain.pre -> handler -> chain.post, with handler exceptions
// caught and translated rather than propagated.
func composeRoute(handler HandlerFunc, mw []Middleware) routeHandler {
	c := chain(mw)
	return func(ctx context.Context, req *Request, resp *Response) (Decision, error) {
		decision, err := c.preHandle(ctx, req, resp)
		if err != nil {
			return Proceed, err
		}
		if decision == Abort {
			return Abort, nil
		}

		callHandler(handler, ctx, req, resp)

		return c.postHandle(ctx, req, resp)
	}
}

// callHandler invokes handler, recovering a panic and translating either a
// panic or a returned error into resp. It never lets a handler failure
// propagate as a Go error, per the error taxonomy in §7: user handler
// failures become an HTTP response, they do not end the session.
func callHandler(handler HandlerFunc, ctx context.Context, req *Request, resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			writeHandlerError(resp, panicError(r))
		}
	}()

	if err := handler(ctx, req, resp); err != nil {
		writeHandlerError(resp, err)
	}
}

func writeHandlerError(resp *Response, err error) {
	httpErr := asHTTPError(err)
	resp.JSON(httpErr.Status, errorBody{Error: errorBodyInner{Message: httpErr.Message, Code: httpErr.Code}})
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
