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
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// SameSite is the Set-Cookie SameSite attribute.
type SameSite int

const (
	SameSiteDefault SameSite = iota
	SameSiteStrict
	SameSiteLax
	SameSiteNone
)

// Cookie describes an outbound Set-Cookie entry. Path, Domain, MaxAge, and
// Expires are optional; a nil MaxAge or Expires means the attribute is
// absent from the serialized header.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   *int
	Expires  *time.Time
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
}

// String serializes c into a Set-Cookie header value. It returns "" if Name
// is not a valid HTTP token; the caller must not emit the header in that
// case. Invalid Path, Domain, or Expires values are dropped with a warning
// and the rest of the cookie is still emitted.
func (c Cookie) String() string {
	if !isToken(c.Name) {
		slog.Warn("fawkes: dropping cookie with invalid name", "name", c.Name)
		return ""
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(percentEncodeUnreserved(c.Value))

	if c.Path != "" {
		if isValidCookieAttr(c.Path) {
			b.WriteString("; Path=")
			b.WriteString(c.Path)
		} else {
			slog.Warn("fawkes: dropping invalid cookie Path attribute", "name", c.Name, "path", c.Path)
		}
	}

	if c.Domain != "" {
		domain := strings.TrimPrefix(c.Domain, ".")
		if isValidCookieDomain(domain) {
			b.WriteString("; Domain=")
			b.WriteString(domain)
		} else {
			slog.Warn("fawkes: dropping invalid cookie Domain attribute", "name", c.Name, "domain", c.Domain)
		}
	}

	if c.MaxAge != nil {
		fmt.Fprintf(&b, "; Max-Age=%d", *c.MaxAge)
	}

	if c.Expires != nil {
		if c.Expires.Year() >= 1601 {
			b.WriteString("; Expires=")
			b.WriteString(c.Expires.UTC().Format(http.TimeFormat))
		} else {
			slog.Warn("fawkes: dropping invalid cookie Expires attribute", "name", c.Name)
		}
	}

	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}

	switch c.SameSite {
	case SameSiteStrict:
		b.WriteString("; SameSite=Strict")
	case SameSiteLax:
		b.WriteString("; SameSite=Lax")
	case SameSiteNone:
		b.WriteString("; SameSite=None")
	}

	return b.String()
}

// isValidCookieAttr is a permissive check for Path attribute text: no ';'
// (the attribute separator) and no control characters. Domain uses the
// stricter isValidCookieDomain instead.
func isValidCookieAttr(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ';' || c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

// isValidCookieDomain validates a Domain attribute against the URI host
// grammar (RFC 3986 authority minus userinfo), the same grammar
// httpguts.ValidHostHeader enforces for the Host request header. This is
// materially stricter than isValidCookieAttr's control-character filter: it
// rejects "exa mple.com" (embedded space) and "http://evil" (scheme, slash)
// alongside control characters and ';'.
func isValidCookieDomain(s string) bool {
	return s != "" && !strings.Contains(s, ";") && httpguts.ValidHostHeader(s)
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}

func percentEncodeUnreserved(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// decodeCookieValue validates s against the pct-encoded/unreserved grammar
// used for request-side cookie values (every byte is either an unreserved
// char or a "%XX" escape) and returns the decoded value. It returns ok ==
// false for any value containing a byte outside that grammar, mirroring
// percentEncodeUnreserved's encoding on the response side.
func decodeCookieValue(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			i++
			continue
		}
		if c == '%' && i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
			b.WriteByte(hexVal(s[i+1])<<4 | hexVal(s[i+2]))
			i += 3
			continue
		}
		return "", false
	}
	return b.String(), true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// parseCookies parses one or more "Cookie" header values into a first-wins
// name->value map, per the grammar in §6: ';'-separated, whitespace-trimmed
// entries; a bare name (no '=') is accepted with an empty value; invalid
// names, and values containing a byte outside the percent-encoded/unreserved
// grammar, are skipped with a warning.
func parseCookies(headerValues []string) map[string]string {
	cookies := make(map[string]string)

	for _, header := range headerValues {
		for _, entry := range strings.Split(header, ";") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			name, value, ok := parseCookieEntry(entry)
			if !ok {
				slog.Warn("fawkes: skipping malformed cookie entry", "entry", entry)
				continue
			}

			if _, exists := cookies[name]; !exists {
				cookies[name] = value
			}
		}
	}

	return cookies
}

func parseCookieEntry(entry string) (name, value string, ok bool) {
	eq := strings.IndexByte(entry, '=')
	if eq < 0 {
		name = strings.TrimSpace(entry)
		return name, "", isToken(name)
	}

	name = strings.TrimSpace(entry[:eq])
	if !isToken(name) {
		return "", "", false
	}

	value, ok = decodeCookieValue(entry[eq+1:])
	if !ok {
		return "", "", false
	}
	return name, value, true
}
