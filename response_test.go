package httpcore

import (
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

// fakeConn is a minimal net.Conn that records everything written to it, for
// asserting on Response.Send's serialized output without a real socket.
type fakeConn struct {
	buf bytes.Buffer
}

func (f *fakeConn) Read(b []byte) (int, error)        { return 0, io.EOF }
func (f *fakeConn) Write(b []byte) (int, error)        { return f.buf.Write(b) }
func (f *fakeConn) Close() error                       { return nil }
func (f *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (f *fakeConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (f *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func newTestConnection() (*Connection, *fakeConn) {
	fc := &fakeConn{}
	conn := newConnection(0, fc, bytebufferpool.Get())
	return conn, fc
}

func TestResponseSendWritesStatusLineHeadersAndBody(t *testing.T) {
	conn, fc := newTestConnection()
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())
	res.SetStatus(201).SetHeader("X-Test", "1").WriteText("hello")

	require.NoError(t, res.Send())

	out := fc.buf.String()
	assert.Contains(t, out, "HTTP/1.1 201 Created\r\n")
	assert.Contains(t, out, "X-Test: 1\r\n")
	assert.Contains(t, out, "Content-Length: 5\r\n")
	assert.Contains(t, out, "\r\n\r\nhello")
}

// Post-condition: the accumulator resets and a second Send is a no-op
// (spec §3, §4.4).
func TestResponseSendIsNoOpAfterFirstCall(t *testing.T) {
	conn, fc := newTestConnection()
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())
	res.WriteText("once")

	require.NoError(t, res.Send())
	firstLen := fc.buf.Len()

	require.NoError(t, res.Send())
	assert.Equal(t, firstLen, fc.buf.Len())
}

// Gzip round-trip (spec §8 property 8).
func TestResponseGzipRoundTrip(t *testing.T) {
	conn, fc := newTestConnection()
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())
	res.EnableGzip().WriteText("hello")

	require.NoError(t, res.Send())

	out := fc.buf.Bytes()
	sep := []byte("\r\n\r\n")
	idx := bytes.Index(out, sep)
	require.GreaterOrEqual(t, idx, 0)
	headers := string(out[:idx])
	body := out[idx+len(sep):]

	assert.Contains(t, headers, "Content-Encoding: gzip")

	gr, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(decompressed))
}

func TestResponseSendValueDispatchesOnType(t *testing.T) {
	conn, fc := newTestConnection()
	res := newResponse(conn, newJSONCodec(), NewNoopLogger())

	require.NoError(t, res.SendValue(map[string]any{"ok": true}))
	assert.Contains(t, fc.buf.String(), `"ok":true`)
}
