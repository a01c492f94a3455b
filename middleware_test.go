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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendingPre(mark string) PreHandleFunc {
	return func(_ context.Context, _ *Request, resp *Response) (Decision, error) {
		resp.body = append(resp.body, mark...)
		return Proceed, nil
	}
}

func appendingPost(mark string) PostHandleFunc {
	return func(_ context.Context, _ *Request, resp *Response) (Decision, error) {
		resp.body = append(resp.body, mark...)
		return Proceed, nil
	}
}

type prePost struct {
	mark string
}

func (p prePost) PreHandle(_ context.Context, _ *Request, resp *Response) (Decision, error) {
	resp.body = append(resp.body, ("pre:" + p.mark)...)
	return Proceed, nil
}

func (p prePost) PostHandle(_ context.Context, _ *Request, resp *Response) (Decision, error) {
	resp.body = append(resp.body, ("post:" + p.mark)...)
	return Proceed, nil
}

func TestChainEmptyProceedsBothPhases(t *testing.T) {
	var c chain
	resp := newResponse(false)

	decision, err := c.preHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)

	decision, err = c.postHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)
}

func TestChainOrdering(t *testing.T) {
	c := chain{appendingPre("A"), appendingPre("B"), appendingPre("C")}
	resp := newResponse(false)

	_, err := c.preHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(resp.body))
}

func TestChainPostRunsReverse(t *testing.T) {
	c := chain{appendingPost("A"), appendingPost("B"), appendingPost("C")}
	resp := newResponse(false)

	_, err := c.postHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, "CBA", string(resp.body))
}

func TestChainMixedHooksOnlyInvokeWhatTheyImplement(t *testing.T) {
	c := chain{prePost{mark: "X"}}
	resp := newResponse(false)

	_, err := c.preHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	_, err = c.postHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)

	assert.Equal(t, "pre:Xpost:X", string(resp.body))
}

func TestChainAbortInPreSkipsLaterPre(t *testing.T) {
	c := chain{
		appendingPre("A"),
		PreHandleFunc(func(context.Context, *Request, *Response) (Decision, error) {
			return Abort, nil
		}),
		appendingPre("never"),
	}
	resp := newResponse(false)

	decision, err := c.preHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Abort, decision)
	assert.Equal(t, "A", string(resp.body))
}

func TestChainAbortInPostSkipsOnlyLaterPost(t *testing.T) {
	c := chain{
		appendingPost("never"),
		PostHandleFunc(func(context.Context, *Request, *Response) (Decision, error) {
			return Abort, nil
		}),
		appendingPost("C"),
	}
	resp := newResponse(false)

	decision, err := c.postHandle(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Abort, decision)
	assert.Equal(t, "C", string(resp.body))
}

func TestChainPreErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	c := chain{PreHandleFunc(func(context.Context, *Request, *Response) (Decision, error) {
		return Proceed, boom
	})}
	resp := newResponse(false)

	_, err := c.preHandle(context.Background(), &Request{}, resp)
	assert.ErrorIs(t, err, boom)
}

func TestComposeRouteHandlerErrorWritesJSONButDoesNotPropagate(t *testing.T) {
	handler := func(context.Context, *Request, *Response) error {
		return NewHTTPError(http.StatusTeapot, "no thanks")
	}
	route := composeRoute(handler, nil)

	resp := newResponse(false)
	decision, err := route(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)
	assert.Equal(t, http.StatusTeapot, resp.Status())
	assert.Contains(t, string(resp.body), "no thanks")
}

func TestComposeRouteHandlerPanicBecomes500(t *testing.T) {
	handler := func(context.Context, *Request, *Response) error {
		panic("unexpected")
	}
	route := composeRoute(handler, nil)

	resp := newResponse(false)
	decision, err := route(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)
	assert.Equal(t, http.StatusInternalServerError, resp.Status())
}

func TestComposeRoutePostStillRunsAfterHandlerError(t *testing.T) {
	handler := func(context.Context, *Request, *Response) error {
		return NewHTTPError(http.StatusBadRequest, "bad")
	}
	ran := false
	post := PostHandleFunc(func(context.Context, *Request, *Response) (Decision, error) {
		ran = true
		return Proceed, nil
	})
	route := composeRoute(handler, []Middleware{post})

	resp := newResponse(false)
	_, err := route(context.Background(), &Request{}, resp)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPanicErrorPreservesOriginalError(t *testing.T) {
	original := NewHTTPError(http.StatusConflict, "conflict")
	err := panicError(original)
	assert.Same(t, error(original), err)
}
