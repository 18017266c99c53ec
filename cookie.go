package httpcore

import (
	"strings"
	"time"
)

// SameSite is the Set-Cookie SameSite directive. Not named in spec.md's
// prose (which only lists Domain/Path/Expires/HttpOnly/Secure) but present
// in the wire format every contemporary framework in the retrieval pack
// supports; see SPEC_FULL.md SUPPLEMENT.
type SameSite int

const (
	SameSiteDefault SameSite = iota
	SameSiteLax
	SameSiteStrict
	SameSiteNone
)

// Cookie is one Set-Cookie directive, keyed by Name within a Response.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
}

// epoch is used by ClearCookie to force immediate client-side expiry.
var epoch = time.Unix(0, 0).UTC()

// String renders the cookie-pair and its attributes in the order browsers
// expect: name=value; Domain=...; Path=...; Expires=...; HttpOnly; Secure.
func (c *Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(http1123))
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	switch c.SameSite {
	case SameSiteLax:
		b.WriteString("; SameSite=Lax")
	case SameSiteStrict:
		b.WriteString("; SameSite=Strict")
	case SameSiteNone:
		b.WriteString("; SameSite=None")
	}
	return b.String()
}

// http1123 matches the RFC 1123 date layout spec §6 requires for Expires.
const http1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

// CookieOptions mirrors spec §4.4's setCookie(name, value, {...}) call
// shape as a Go options struct rather than a loose map.
type CookieOptions struct {
	Domain   string
	Path     string
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
}
