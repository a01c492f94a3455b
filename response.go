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
	"encoding/json"
	"net/http"
)

// Response is the server's builder for the one response written per
// request. Keep-alive is carried over from the request at construction; the
// protocol version is not, and the response is always written as HTTP/1.1.
// The default status is 200.
type Response struct {
	status int
	header http.Header
	body   []byte

	keepAlive bool
}

func newResponse(keepAlive bool) *Response {
	return &Response{
		status:    http.StatusOK,
		header:    make(http.Header),
		keepAlive: keepAlive,
	}
}

// SetStatus sets the response status code.
func (resp *Response) SetStatus(status int) {
	resp.status = status
}

// Status returns the response status code.
func (resp *Response) Status() int {
	return resp.status
}

// SetHeader sets the named header to a single value, replacing any
// previous values.
func (resp *Response) SetHeader(name, value string) {
	resp.header.Set(name, value)
}

// AddHeader appends a value to the named header without clearing existing
// values.
func (resp *Response) AddHeader(name, value string) {
	resp.header.Add(name, value)
}

// Header returns the response's header map for direct inspection.
func (resp *Response) Header() http.Header {
	return resp.header
}

// Body returns the response body written so far.
func (resp *Response) Body() []byte {
	return resp.body
}

// Text sets status and body to s, with Content-Type text/plain.
func (resp *Response) Text(status int, s string) {
	resp.status = status
	resp.header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.body = []byte(s)
}

// JSON sets status and body to the JSON encoding of v, with Content-Type
// application/json. A marshal failure is converted into a 500 JSON error
// body instead, so JSON never leaves the response in an inconsistent state.
func (resp *Response) JSON(status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		resp.status = http.StatusInternalServerError
		resp.header.Set("Content-Type", "application/json; charset=utf-8")
		resp.body = []byte(`{"error":{"message":"failed to encode response body"}}`)
		return
	}
	resp.status = status
	resp.header.Set("Content-Type", "application/json; charset=utf-8")
	resp.body = data
}

// SetCookie appends a Set-Cookie header for c, unless c serializes to an
// empty string (an invalid cookie name), in which case nothing is emitted.
func (resp *Response) SetCookie(c Cookie) {
	if v := c.String(); v != "" {
		resp.header.Add("Set-Cookie", v)
	}
}

// KeepAlive reports whether the connection will remain open after this
// response is written.
func (resp *Response) KeepAlive() bool {
	return resp.keepAlive
}
