package httpcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCookieStringIncludesAllAttributes(t *testing.T) {
	c := &Cookie{
		Name:     "session",
		Value:    "abc123",
		Domain:   "example.com",
		Path:     "/",
		Expires:  time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC),
		HTTPOnly: true,
		Secure:   true,
		SameSite: SameSiteStrict,
	}

	s := c.String()
	assert.Equal(t, "session=abc123; Domain=example.com; Path=/; Expires=Wed, 02 Jan 2030 15:04:05 GMT; HttpOnly; Secure; SameSite=Strict", s)
}

func TestCookieStringOmitsUnsetAttributes(t *testing.T) {
	c := &Cookie{Name: "a", Value: "b"}
	assert.Equal(t, "a=b", c.String())
}

// ClearCookie sets Expires to the Unix epoch (spec §4.4).
func TestResponseClearCookieSetsEpoch(t *testing.T) {
	conn, _ := newTestConnection()
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())
	res.ClearCookie("session", "example.com", "/")

	require := assert.New(t)
	require.Len(res.cookies, 1)
	require.True(res.cookies[0].Expires.Equal(epoch))
}
