package httpcore

import (
	"strconv"
	"strings"
)

// bodyKind tracks whether Response currently holds a text accumulator or a
// promoted binary buffer, per spec §4.4 ("writeBytes promotes any
// accumulated text to binary then appends").
type bodyKind int

const (
	bodyEmpty bodyKind = iota
	bodyText
	bodyBinary
)

// Response is a mutable per-request builder, exclusively owned by the
// worker handling the request (spec §3, §5 "never cross-thread").
type Response struct {
	status  int
	headers Header
	cookies []*Cookie

	kind     bodyKind
	text     strings.Builder
	binary   []byte
	gzip     bool
	jsonCode JSONCodec

	conn *Connection
	sent bool

	logger Logger
}

func newResponse(conn *Connection, codec JSONCodec, logger Logger) *Response {
	return &Response{
		status:   200,
		headers:  newHeader(),
		conn:     conn,
		jsonCode: codec,
		logger:   logger,
	}
}

// SetStatus sets the response status code (default 200).
func (res *Response) SetStatus(code int) *Response {
	res.status = code
	return res
}

// SetHeader sets a response header, case-insensitive merge, last-wins.
func (res *Response) SetHeader(name, value string) *Response {
	res.headers.Set(name, value)
	return res
}

// SetCookie sets the Set-Cookie directive keyed by name, replacing any
// earlier directive for the same name (spec §4.4).
func (res *Response) SetCookie(name, value string, opts CookieOptions) *Response {
	res.putCookie(&Cookie{
		Name:     name,
		Value:    value,
		Domain:   opts.Domain,
		Path:     opts.Path,
		Expires:  opts.Expires,
		HTTPOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
	return res
}

// ClearCookie sets Expires to the Unix epoch so the client discards it.
func (res *Response) ClearCookie(name, domain, path string) *Response {
	res.putCookie(&Cookie{
		Name:    name,
		Domain:  domain,
		Path:    path,
		Expires: epoch,
	})
	return res
}

// putCookie stores c, replacing an existing cookie with the same name.
func (res *Response) putCookie(c *Cookie) {
	for i, existing := range res.cookies {
		if existing.Name == c.Name {
			res.cookies[i] = c
			return
		}
	}
	res.cookies = append(res.cookies, c)
}

// WriteText appends s to the text body accumulator.
func (res *Response) WriteText(s string) *Response {
	if res.kind == bodyBinary {
		res.binary = append(res.binary, s...)
		return res
	}
	res.kind = bodyText
	res.text.WriteString(s)
	return res
}

// WriteJSON serializes obj via the configured JSONCodec and sets
// Content-Type to application/json.
func (res *Response) WriteJSON(obj any) *Response {
	data, err := res.jsonCode.Encode(obj)
	if err != nil {
		res.status = 500
		res.kind = bodyText
		res.text.Reset()
		res.text.WriteString(`{"error":"encode failure"}`)
		return res
	}
	res.headers.Set("Content-Type", "application/json")
	res.kind = bodyBinary
	res.binary = data
	return res
}

// WriteBytes promotes any accumulated text to the binary buffer, then
// appends buf[off:off+length] (spec §4.4).
func (res *Response) WriteBytes(buf []byte, off, length int) *Response {
	if res.kind == bodyText && res.text.Len() > 0 {
		res.binary = append(res.binary, []byte(res.text.String())...)
		res.text.Reset()
	}
	res.kind = bodyBinary
	res.binary = append(res.binary, buf[off:off+length]...)
	return res
}

// EnableGzip marks the response body for gzip compression on send.
func (res *Response) EnableGzip() *Response {
	res.gzip = true
	return res
}

func (res *Response) bodyBytes() []byte {
	if res.kind == bodyBinary {
		return res.binary
	}
	return []byte(res.text.String())
}

// Send serializes and writes the response to the socket (spec §4.4
// algorithm). A second call after a successful send is a no-op.
func (res *Response) Send() error {
	if res.sent {
		return nil
	}

	body := res.bodyBytes()
	if res.gzip {
		compressed, err := gzipCompress(body)
		if err == nil {
			body = compressed
			res.headers.Set("Content-Encoding", "gzip")
		}
	}
	res.headers.Set("Content-Length", strconv.Itoa(len(body)))
	if res.headers.Get("Content-Type") == "" && len(body) > 0 {
		res.headers.Set("Content-Type", "text/plain; charset=utf-8")
	}

	var out strings.Builder
	out.WriteString("HTTP/1.1 ")
	out.WriteString(strconv.Itoa(res.status))
	out.WriteByte(' ')
	out.WriteString(StatusText(res.status))
	out.WriteString("\r\n")

	res.headers.Each(func(key, value string) {
		out.WriteString(key)
		out.WriteString(": ")
		out.WriteString(value)
		out.WriteString("\r\n")
	})
	for _, c := range res.cookies {
		out.WriteString("Set-Cookie: ")
		out.WriteString(c.String())
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n")

	head := []byte(out.String())
	payload := make([]byte, 0, len(head)+len(body))
	payload = append(payload, head...)
	payload = append(payload, body...)

	if err := res.conn.writeAll(payload); err != nil {
		if isBenignWriteError(err) {
			res.logger.Info("write failed on closed peer", "connection", res.conn.id)
		} else {
			res.logger.Error("response write failed", err, "connection", res.conn.id)
		}
		res.reset()
		return err
	}

	res.reset()
	return nil
}

// reset clears the body accumulator so a subsequent Send (spec §3 invariant)
// is a no-op, and marks sent.
func (res *Response) reset() {
	res.sent = true
	res.kind = bodyEmpty
	res.text.Reset()
	res.binary = nil
}

// SendValue dispatches on the runtime type of x: string -> text, []byte ->
// binary, else JSON (spec §4.4 "send(x) overload").
func (res *Response) SendValue(x any) error {
	switch v := x.(type) {
	case string:
		res.WriteText(v)
	case []byte:
		res.WriteBytes(v, 0, len(v))
	default:
		res.WriteJSON(v)
	}
	return res.Send()
}
