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

// Package fawkes is a lightweight, embeddable HTTP/1.1 server library for
// building REST-style services.
//
// Applications register route handlers keyed by method and path template
// and optionally compose middleware stages around them. The library accepts
// TCP connections, parses requests, dispatches to the matching handler, and
// writes responses, honoring keep-alive and configurable timeouts.
//
// The three pieces that make up the core of the library are:
//
//   - A compressed-trie path router (one trie per HTTP verb) supporting
//     named parameters and catch-all segments, with strict conflict
//     detection at registration time and O(path-length) lookup.
//   - A middleware pipeline with cooperative pre-handle/post-handle phases
//     and short-circuit "abort" semantics.
//   - A per-connection serve loop implementing the HTTP/1.1 request/response
//     state machine, with independently configurable idle, read, and serve
//     timeouts and cancellation-driven graceful shutdown.
//
// A minimal server looks like this:
//
//	r := fawkes.NewRouter()
//	r.GET("/ping", func(ctx context.Context, req *fawkes.Request, resp *fawkes.Response) error {
//	    resp.Text(http.StatusOK, "Pong!")
//	    return nil
//	})
//
//	srv := fawkes.NewServer(r, fawkes.WithIdleTimeout(60*time.Second))
//	log.Fatal(srv.ListenAndServe(":8080"))
package fawkes
