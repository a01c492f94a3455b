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
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Server accepts TCP connections and runs the per-connection HTTP/1.1
// session loop against a Router. A Server value owns everything it needs;
// there is no package-level global state.
type Server struct {
	router *Router

	idleTimeout  time.Duration
	readTimeout  time.Duration
	serveTimeout time.Duration

	poolSize int
	pool     *executorPool

	logger      *slog.Logger
	tracer      trace.Tracer
	tracerOwned *sdktrace.TracerProvider // non-nil iff this Server constructed its own tracer
	metricsReg  prometheus.Registerer
	metrics     *serverMetrics

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewServer builds a Server for router. Options are applied in order; see
// WithIdleTimeout, WithReadTimeout, WithServeTimeout, WithExecutorPoolSize,
// WithLogger, WithTracer, and WithMetricsRegisterer.
func NewServer(router *Router, opts ...Option) *Server {
	s := &Server{
		router:     router,
		logger:     slog.Default(),
		tracer:     trace.NewNoopTracerProvider().Tracer("fawkes"),
		metricsReg: prometheus.DefaultRegisterer,
		shutdown:   make(chan struct{}),
	}

	if tp, err := newDefaultTracerProvider(); err != nil {
		s.logger.Error("fawkes: default tracer provider disabled, falling back to no-op", "error", err)
	} else {
		s.tracerOwned = tp
		s.tracer = tp.Tracer("fawkes")
	}

	for _, opt := range opts {
		opt(s)
	}

	s.metrics = newServerMetrics(s.metricsReg)

	if s.poolSize > 0 {
		pool, err := newExecutorPool(s.poolSize, s.logger)
		if err != nil {
			// A non-positive size is caught by the caller's own
			// WithExecutorPoolSize contract; surfacing it here would be
			// too late to act on, so fall back to unpooled dispatch.
			s.logger.Error("fawkes: executor pool disabled", "error", err)
		} else {
			s.pool = pool
		}
	}

	return s
}

// ListenAndServe binds addr and begins accepting connections. It blocks
// until Stop is called or the listener fails, returning ErrServerClosed
// after a graceful Stop.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln, dispatching each to its own session.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return ErrServerClosed
			default:
			}
			s.logger.Error("fawkes: accept failed", "error", err)
			continue
		}

		task := func() { s.serveConn(conn) }
		if s.pool != nil {
			s.pool.submit(task)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			task()
		}()
	}
}

// Stop closes the listener so no new connections are accepted, signals the
// stop token observed by sessions at their next iteration boundary, and
// waits for in-flight sessions (each allowed to finish its current
// response) to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	close(s.shutdown)
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}

	s.wg.Wait()
	if s.pool != nil {
		s.pool.join()
	}

	shutdownTracerProvider(context.Background(), s.tracerOwned, s.logger)

	return err
}
