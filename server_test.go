package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise the literal end-to-end scenarios from spec §8 (S1-S4)
// against the router/parser/response stack directly. EventLoop itself is
// Linux-epoll-specific and not driven here; it is a thin dispatch shim over
// this same Router.Apply/parseRequest/Response.Send path.

func TestScenarioS1PathParams(t *testing.T) {
	rt := NewRouter()
	rt.GET("/users/:u/orders/:o", func(req *Request, res *Response) {
		res.SetStatus(200).WriteText("u=" + req.PathParam("u") + ",o=" + req.PathParam("o"))
		_ = res.Send()
	})

	raw := []byte("GET /users/42/orders/7 HTTP/1.1\r\nHost: x\r\n\r\n")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)

	conn, fc := newTestConnection()
	req.conn = conn
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())

	rt.Apply(req, res, notFoundStub)

	assert.Equal(t, 200, res.status)
	assert.Contains(t, fc.buf.String(), "u=42,o=7")
}

func TestScenarioS2JSONPost(t *testing.T) {
	rt := NewRouter()
	rt.POST("/api/data/:key", func(req *Request, res *Response) {
		res.SetStatus(201).WriteJSON(map[string]any{"ok": true, "key": req.PathParam("key")})
		_ = res.Send()
	})

	raw := []byte("POST /api/data/key1 HTTP/1.1\r\nContent-Length: 13\r\n\r\nhello, world!")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", req.BodyText())

	conn, fc := newTestConnection()
	req.conn = conn
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())

	rt.Apply(req, res, notFoundStub)

	out := fc.buf.String()
	assert.Contains(t, out, "HTTP/1.1 201 Created")
	assert.Contains(t, out, `"ok":true`)
	assert.Contains(t, out, `"key":"key1"`)
}

func TestScenarioS3Gzip(t *testing.T) {
	rt := NewRouter()
	rt.GET("/", func(req *Request, res *Response) {
		res.EnableGzip().WriteText("hello")
		_ = res.Send()
	})

	raw := []byte("GET / HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)

	conn, fc := newTestConnection()
	req.conn = conn
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())

	rt.Apply(req, res, notFoundStub)

	assert.Contains(t, fc.buf.String(), "Content-Encoding: gzip")
}

func TestScenarioS4MountedRouters(t *testing.T) {
	root := NewRouter()
	v1 := NewRouter()
	v1.GET("/ping", func(req *Request, res *Response) { res.WriteText("v1"); _ = res.Send() })
	root.Mount("/api/v1", v1)

	v2 := NewRouter()
	v2.GET("/ping", func(req *Request, res *Response) { res.WriteText("v2"); _ = res.Send() })
	root.Mount("/api/v2", v2)

	for _, tc := range []struct {
		path string
		want string
	}{
		{"/api/v1/ping", "v1"},
		{"/api/v2/ping", "v2"},
	} {
		raw := []byte("GET " + tc.path + " HTTP/1.1\r\nHost: x\r\n\r\n")
		req, err := parseRequest(raw, nil)
		require.NoError(t, err)

		conn, fc := newTestConnection()
		req.conn = conn
		res := newResponse(conn, newJSONCodec(), NewNoopLogger())

		root.Apply(req, res, notFoundStub)
		assert.Contains(t, fc.buf.String(), tc.want)
	}

	raw := []byte("GET /api/v3/ping HTTP/1.1\r\nHost: x\r\n\r\n")
	req, err := parseRequest(raw, nil)
	require.NoError(t, err)
	conn, _ := newTestConnection()
	req.conn = conn
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())
	root.Apply(req, res, notFoundStub)
	assert.Equal(t, 404, res.status)
}
