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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Server. Options are applied in the order passed to
// NewServer.
type Option func(*Server)

// WithIdleTimeout sets the deadline armed before each connection's next
// read while waiting for a keep-alive reuse. Zero (the default) disables
// it.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// WithReadTimeout sets the deadline covering header-plus-body parsing for
// one request. Zero (the default) disables it.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

// WithServeTimeout sets the deadline covering routing, middleware, and
// handler execution for one request. Zero (the default) disables it.
func WithServeTimeout(d time.Duration) Option {
	return func(s *Server) { s.serveTimeout = d }
}

// WithExecutorPoolSize runs the connection-accept loop's per-session work
// on an N-worker round-robin executor pool instead of spawning a goroutine
// per connection directly. N must be greater than zero.
func WithExecutorPoolSize(n int) Option {
	return func(s *Server) { s.poolSize = n }
}

// WithLogger overrides the logger used for ambient request/connection
// logging. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTracer attaches an OpenTelemetry tracer; each dispatched request is
// wrapped in a span. The default is an SDK tracer provider exporting spans
// to stdout; passing a tracer here replaces it outright, leaving the
// default provider unreferenced and unexercised rather than shut down on
// Stop.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
		s.tracerOwned = nil
	}
}

// WithMetricsRegisterer registers the server's Prometheus collectors
// (request counts and latencies) against reg instead of the default
// registry. Pass nil to disable metrics entirely.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(s *Server) { s.metricsReg = reg }
}

// effectiveReadTimeout implements the §3 rule: when both read and serve
// timeouts are positive, the smaller wins; otherwise whichever one is
// positive applies; zero if neither is.
func effectiveReadTimeout(read, serve time.Duration) time.Duration {
	switch {
	case read > 0 && serve > 0:
		if read < serve {
			return read
		}
		return serve
	case read > 0:
		return read
	case serve > 0:
		return serve
	default:
		return 0
	}
}
