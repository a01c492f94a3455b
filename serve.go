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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// serveConn runs the Idle -> ReadHeader -> [Expect100 -> ReadBody] ->
// Dispatch -> Write -> (Idle | Closed) state machine for one connection,
// looping while the connection is kept alive.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)

	for {
		select {
		case <-s.shutdown:
			halfCloseWrite(conn)
			return
		default:
		}

		if s.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		if _, err := br.Peek(1); err != nil {
			if !isClosedOrEOF(err) && !isTimeoutErr(err) {
				s.logger.Debug("fawkes: connection read failed", "error", err)
			}
			return
		}

		readStart := time.Now()
		if d := effectiveReadTimeout(s.readTimeout, s.serveTimeout); d > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(d))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		req, err := http.ReadRequest(br)
		if err != nil {
			if isTimeoutErr(err) {
				s.logger.Debug("fawkes: read timeout, closing connection")
			} else if !isClosedOrEOF(err) {
				s.writeRawError(conn, http.StatusBadRequest)
			}
			return
		}

		if wantsContinue(req) {
			if _, err := io.WriteString(conn, "HTTP/1.1 100 Continue\r\n\r\n"); err != nil {
				return
			}
		}

		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			s.writeRawError(conn, http.StatusBadRequest)
			return
		}

		readElapsed := time.Since(readStart)
		_ = conn.SetReadDeadline(time.Time{})
		_ = conn.SetWriteDeadline(time.Time{})

		ctx, cancel := s.serveContext(readElapsed)

		fawkesReq := newRequest(req, body)
		resp := newResponse(fawkesReq.KeepAlive())

		dispatchStart := time.Now()
		ctx, span := s.tracer.Start(ctx, "fawkes.dispatch")
		dispatchErr := s.router.Dispatch(ctx, fawkesReq, resp)
		span.End()
		cancel()

		s.metrics.observe(req.Method, resp.Status(), time.Since(dispatchStart).Seconds())

		if dispatchErr != nil {
			s.logger.Error("fawkes: middleware error, ending session", "error", dispatchErr)
			return
		}

		if err := s.writeResponse(conn, req, resp); err != nil {
			s.logger.Debug("fawkes: failed writing response", "error", err)
			return
		}

		select {
		case <-s.shutdown:
			halfCloseWrite(conn)
			return
		default:
		}

		if !resp.KeepAlive() {
			halfCloseWrite(conn)
			return
		}
	}
}

// halfCloseWrite shuts down the write side of conn, matching the original
// session loop's stream.socket().shutdown(shutdown_send) on a normal,
// non-keep-alive (or server-shutdown) exit: the client can still finish
// reading the just-written response before the deferred conn.Close tears
// the connection down fully. conn implementations without CloseWrite (not
// *net.TCPConn) fall straight through to the full close.
func halfCloseWrite(conn net.Conn) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}

// serveContext builds the context covering dispatch (routing, middleware,
// and handler execution). Per the serve_timeout rule, its deadline is
// measured from the completion of the initial read, less the header/body
// parse time already spent.
func (s *Server) serveContext(readElapsed time.Duration) (context.Context, context.CancelFunc) {
	if s.serveTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	remaining := s.serveTimeout - readElapsed
	if remaining < 0 {
		remaining = 0
	}
	return context.WithTimeout(context.Background(), remaining)
}

func wantsContinue(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Expect"), "100-continue")
}

// writeResponse serializes resp as an HTTP/1.1 message, setting Server,
// Content-Length, and the keep-alive/Connection framing.
func (s *Server) writeResponse(conn net.Conn, req *http.Request, resp *Response) error {
	header := resp.Header().Clone()
	header.Set("Server", "fawkes")

	wire := &http.Response{
		StatusCode:    resp.Status(),
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body())),
		ContentLength: int64(len(resp.Body())),
		Close:         !resp.KeepAlive(),
		Request:       req,
	}
	return wire.Write(conn)
}

// writeRawError writes a minimal JSON error response directly, used when
// request parsing itself fails and no Request/Response pair exists yet.
func (s *Server) writeRawError(conn net.Conn, status int) {
	body := fmt.Sprintf(`{"error":{"message":%q}}`, http.StatusText(status))
	wire := &http.Response{
		StatusCode:    status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Close:         true,
	}
	_ = wire.Write(conn)
}

func isTimeoutErr(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isClosedOrEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}
