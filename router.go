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
	"strings"
)

// Router owns one compressed-trie path tree per HTTP verb, plus the
// router-level middleware chain. Route registration is not concurrent-safe
// with itself or with serving: register every route and call Use before
// the server starts accepting connections.
type Router struct {
	trees map[string]*tree
	mw    chain
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{trees: make(map[string]*tree)}
}

// Use appends to the router-level middleware chain, evaluated around every
// request regardless of whether a route matched.
func (r *Router) Use(mw ...Middleware) {
	r.mw = append(r.mw, mw...)
}

// Handle registers handler for method and path, wrapped by its own
// per-route middleware chain. It returns an *InvalidRouteError if path
// conflicts with an already-registered route.
func (r *Router) Handle(method, path string, handler HandlerFunc, mw ...Middleware) error {
	if handler == nil {
		return ErrHandlerNil
	}

	method = strings.ToUpper(method)
	t, ok := r.trees[method]
	if !ok {
		t = newTree()
		r.trees[method] = t
	}

	return t.addRoute(path, composeRoute(handler, mw))
}

// GET registers a GET route.
func (r *Router) GET(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("GET", path, handler, mw...)
}

// POST registers a POST route.
func (r *Router) POST(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("POST", path, handler, mw...)
}

// PUT registers a PUT route.
func (r *Router) PUT(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("PUT", path, handler, mw...)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("PATCH", path, handler, mw...)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("DELETE", path, handler, mw...)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(path string, handler HandlerFunc, mw ...Middleware) error {
	return r.Handle("HEAD", path, handler, mw...)
}

// locateRoute returns the route callable registered for method and path,
// and the path parameters bound while locating it, without running any
// middleware.
func (r *Router) locateRoute(method, path string) (routeHandler, Params, bool) {
	t, ok := r.trees[method]
	if !ok {
		return nil, nil, false
	}
	handler, params, found := t.getValue(path)
	if !found || handler == nil {
		return nil, nil, false
	}
	return handler, params, true
}

// Dispatch runs the full invocation order for one request: route location
// (binding path parameters before any middleware runs), router pre-phase
// (forward), the route's own pre/handler/post phases, and router post-phase
// (reverse). A non-nil error is a middleware failure that must end the
// session; handler failures are already translated into resp.
func (r *Router) Dispatch(ctx context.Context, req *Request, resp *Response) error {
	handler, params, found := r.locateRoute(req.Method, req.path)
	if found {
		req.setParams(params)
	}

	decision, err := r.mw.preHandle(ctx, req, resp)
	if err != nil {
		return err
	}
	if decision == Abort {
		return nil
	}

	if found {
		decision, err := handler(ctx, req, resp)
		if err != nil {
			return err
		}
		if decision == Abort {
			return nil
		}
	} else {
		writeHandlerError(resp, errNotFound())
	}

	_, err = r.mw.postHandle(ctx, req, resp)
	return err
}
