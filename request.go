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
	"net/http"
	"net/url"
)

// Request is the server's view of one parsed HTTP request. It is created
// once per wire-level request and is mutated only by middleware (headers,
// path params); user handlers should treat it as read-only.
type Request struct {
	Method string
	Proto  string

	target string // reconstructed target; the query is dropped when malformed
	path   string // percent-decoded path

	query url.Values

	header http.Header

	cookieHeader []string
	cookies      map[string]string
	cookiesRead  bool

	Body []byte

	params Params

	keepAlive bool
}

// newRequest builds a Request from a parsed wire request and its fully-read
// body. Path parse failures are caught earlier, by the wire parser itself;
// a malformed query string is not fatal here — it is discarded and logged,
// and the decoded path remains usable.
func newRequest(r *http.Request, body []byte) *Request {
	path := r.URL.Path
	target := r.URL.EscapedPath()

	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		slog.Warn("fawkes: discarding malformed query string", "raw_query", r.URL.RawQuery, "error", err)
		query = url.Values{}
	} else if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req := &Request{
		Method:       r.Method,
		Proto:        r.Proto,
		target:       target,
		path:         path,
		query:        query,
		header:       r.Header,
		cookieHeader: r.Header.Values("Cookie"),
		Body:         body,
		// http.ReadRequest already derives Close from the HTTP version and
		// the Connection header per RFC 7230; this module sits on that
		// parse rather than re-deriving it from the header itself.
		keepAlive: !r.Close,
	}
	return req
}

// Path returns the percent-decoded request path.
func (r *Request) Path() string { return r.path }

// Target returns the request target (path plus query, when the query was
// well-formed); it differs from the raw wire target only when the query
// string was malformed and discarded.
func (r *Request) Target() string { return r.target }

// Query returns the decoded value of the first occurrence of key, and
// whether key was present at all. Presence-only parameters ("?key") report
// an empty value with ok == true.
func (r *Request) Query(key string) (string, bool) {
	values, ok := r.query[key]
	if !ok || len(values) == 0 {
		return "", ok
	}
	return values[0], true
}

// QueryValues returns every value bound to key, in wire order.
func (r *Request) QueryValues(key string) []string {
	return r.query[key]
}

// Header returns the first value of the named header, case-insensitively.
func (r *Request) Header(name string) string {
	return r.header.Get(name)
}

// HeaderValues returns every value of the named header, case-insensitively.
func (r *Request) HeaderValues(name string) []string {
	return r.header.Values(name)
}

// Param returns the bound path parameter named key, and whether it was
// present for the matched route.
func (r *Request) Param(key string) (string, bool) {
	return r.params.ByName(key)
}

// Params returns every path parameter bound to the matched route, in the
// order the wildcards appear in the route template.
func (r *Request) Params() Params {
	return r.params
}

func (r *Request) setParams(p Params) {
	r.params = p
}

// Cookie returns the value of the first Cookie entry named key. Cookies are
// parsed lazily on first access, per §6: ';'-separated, whitespace-trimmed,
// first match wins.
func (r *Request) Cookie(key string) (string, bool) {
	if !r.cookiesRead {
		r.cookies = parseCookies(r.cookieHeader)
		r.cookiesRead = true
	}
	v, ok := r.cookies[key]
	return v, ok
}

// KeepAlive reports whether the connection should remain open after this
// request's response is written.
func (r *Request) KeepAlive() bool { return r.keepAlive }
