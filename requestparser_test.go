package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCompletePredicate(t *testing.T) {
	headersOnly := []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	complete, err := requestComplete(headersOnly)
	require.NoError(t, err)
	assert.True(t, complete)

	partial := []byte("GET / HTTP/1.1\r\nHost: x\r\n")
	complete, err = requestComplete(partial)
	require.NoError(t, err)
	assert.False(t, complete)

	withBody := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	complete, err = requestComplete(withBody)
	require.NoError(t, err)
	assert.True(t, complete)

	shortBody := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhe")
	complete, err = requestComplete(shortBody)
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestRequestCompleteConflictingContentLengthIsMalformed(t *testing.T) {
	buf := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello!")
	_, err := requestComplete(buf)
	assert.ErrorIs(t, err, ErrMalformedFraming)
}

// Parsing a body-less request yields its method, decoded path, raw and
// parsed query, and case-insensitive headers.
func TestParseRequestStartLineAndHeaders(t *testing.T) {
	raw := []byte("GET /users/42/orders/7?x=1 HTTP/1.1\r\nHost: example.com\r\nX-Trace: a, b\r\n\r\n")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, MethodGET, req.Method)
	assert.Equal(t, "/users/42/orders/7", req.Path())
	assert.Equal(t, "x=1", req.RawQuery())
	assert.Equal(t, "1", req.Query("x"))
	assert.Equal(t, "example.com", req.Header("Host"))
}

func TestParseRequestMalformedStartLine(t *testing.T) {
	_, err := parseRequest([]byte("GET /\r\n\r\n"), nil)
	assert.ErrorIs(t, err, ErrMalformedStartLine)
}

func TestParseRequestChunkedBody(t *testing.T) {
	raw := []byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", req.BodyText())
}

func TestParseRequestContentLengthBody(t *testing.T) {
	raw := []byte("POST /api/data/key1 HTTP/1.1\r\nContent-Length: 13\r\n\r\nhello, world!")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", req.BodyText())
	assert.Equal(t, "/api/data/key1", req.Path())
}

func TestHeaderCaseInsensitive(t *testing.T) {
	h := newHeader()
	h.Set("Content-Type", "application/json")
	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.True(t, h.Has("CONTENT-TYPE"))
}
