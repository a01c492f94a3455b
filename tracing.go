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

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newDefaultTracerProvider builds the library's default tracer: an SDK
// provider batching finished spans through the stdout exporter, one JSON
// object per span. A Server that never gets a WithTracer owns this
// provider's lifecycle and flushes it on Stop.
func newDefaultTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// shutdownTracerProvider flushes and closes tp, logging rather than
// surfacing a failure: Stop already has a listener-close error of its own to
// return, and a stuck exporter shouldn't block the rest of shutdown.
func shutdownTracerProvider(ctx context.Context, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error("fawkes: tracer provider shutdown failed", "error", err)
	}
}
