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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics holds the server's Prometheus collectors. A nil reg passed
// to newServerMetrics disables metrics: every method becomes a no-op.
type serverMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	if reg == nil {
		return nil
	}

	m := &serverMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fawkes_requests_total",
			Help: "Total number of requests dispatched, by method and status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fawkes_request_duration_seconds",
			Help:    "Request dispatch latency in seconds, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	// Collectors an earlier Server already registered on reg are shared.
	if err := reg.Register(m.requestsTotal); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		m.requestsTotal = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.requestDuration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		m.requestDuration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m
}

func (m *serverMetrics) observe(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}
