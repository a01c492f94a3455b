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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStringBasic(t *testing.T) {
	c := Cookie{Name: "session", Value: "abc123"}
	assert.Equal(t, "session=abc123", c.String())
}

func TestCookieStringPercentEncodesValue(t *testing.T) {
	c := Cookie{Name: "session", Value: "a b;c"}
	assert.Equal(t, "session=a%20b%3Bc", c.String())
}

func TestCookieStringFullAttributes(t *testing.T) {
	maxAge := 3600
	expires := time.Date(2030, time.January, 2, 3, 4, 5, 0, time.UTC)
	c := Cookie{
		Name:     "session",
		Value:    "abc",
		Path:     "/app",
		Domain:   ".example.com",
		MaxAge:   &maxAge,
		Expires:  &expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: SameSiteLax,
	}

	got := c.String()
	assert.Contains(t, got, "session=abc")
	assert.Contains(t, got, "Path=/app")
	assert.Contains(t, got, "Domain=example.com")
	assert.Contains(t, got, "Max-Age=3600")
	assert.Contains(t, got, "Expires=Wed, 02 Jan 2030 03:04:05 GMT")
	assert.Contains(t, got, "Secure")
	assert.Contains(t, got, "HttpOnly")
	assert.Contains(t, got, "SameSite=Lax")
}

func TestCookieStringInvalidNameYieldsEmpty(t *testing.T) {
	c := Cookie{Name: "bad name;", Value: "x"}
	assert.Equal(t, "", c.String())
}

func TestCookieStringInvalidExpiresYearDropped(t *testing.T) {
	early := time.Date(1600, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := Cookie{Name: "s", Value: "v", Expires: &early}
	assert.NotContains(t, c.String(), "Expires")
}

// Domain is validated against the URI host grammar, a stricter check than
// Path's control-character filter: values a naive filter would let through
// (embedded whitespace, a scheme prefix) must still be rejected.
func TestCookieStringInvalidDomainDropped(t *testing.T) {
	for _, domain := range []string{"exa mple.com", "http://evil", "evil.com/path"} {
		c := Cookie{Name: "s", Value: "v", Domain: domain}
		got := c.String()
		assert.NotContains(t, got, "Domain", "domain %q should have been rejected", domain)
	}
}

func TestCookieStringValidDomainKept(t *testing.T) {
	c := Cookie{Name: "s", Value: "v", Domain: "example.com"}
	assert.Contains(t, c.String(), "Domain=example.com")
}

func TestParseCookiesFirstWins(t *testing.T) {
	cookies := parseCookies([]string{"a=1; b=2; a=3"})
	assert.Equal(t, "1", cookies["a"])
	assert.Equal(t, "2", cookies["b"])
}

func TestParseCookiesBareNameHasEmptyValue(t *testing.T) {
	cookies := parseCookies([]string{"flag; a=1"})
	v, ok := cookies["flag"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseCookiesMultipleEqualsSkipped(t *testing.T) {
	cookies := parseCookies([]string{"a=1=2; b=3"})
	_, ok := cookies["a"]
	assert.False(t, ok)
	assert.Equal(t, "3", cookies["b"])
}

func TestParseCookiesAcrossMultipleHeaderValues(t *testing.T) {
	cookies := parseCookies([]string{"a=1", "b=2"})
	assert.Equal(t, "1", cookies["a"])
	assert.Equal(t, "2", cookies["b"])
}

func TestParseCookiesPercentDecodesValue(t *testing.T) {
	cookies := parseCookies([]string{"session=a%20b%3Bc"})
	v, ok := cookies["session"]
	require.True(t, ok)
	assert.Equal(t, "a b;c", v)
}

func TestParseCookiesRejectsValueWithRawInvalidByte(t *testing.T) {
	cookies := parseCookies([]string{"session=a b; other=1"})
	_, ok := cookies["session"]
	assert.False(t, ok)
	assert.Equal(t, "1", cookies["other"])
}

func TestParseCookiesRejectsIncompletePercentEscape(t *testing.T) {
	cookies := parseCookies([]string{"session=a%2; other=1"})
	_, ok := cookies["session"]
	assert.False(t, ok)
	assert.Equal(t, "1", cookies["other"])
}

func TestParseCookiesRoundTripsResponseEncoding(t *testing.T) {
	c := Cookie{Name: "session", Value: "a b;c"}
	encoded := c.String() // "session=a%20b%3Bc"

	_, rawValue, ok := strings.Cut(encoded, "=")
	require.True(t, ok)

	cookies := parseCookies([]string{"session=" + rawValue})
	assert.Equal(t, "a b;c", cookies["session"])
}
