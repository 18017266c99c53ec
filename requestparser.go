package httpcore

import (
	"bytes"
	"mime"
	"net/url"
	"strconv"
	"strings"
)

const headerTerminator = "\r\n\r\n"
const maxStartLineAndHeaders = 64 * 1024

// requestComplete is the completeness predicate the event loop runs before
// ever handing a connection's accumulator to the parser (spec §4.3). It
// never allocates a Request; it only classifies the buffer.
//
// Returns (true, nil) when a full request is present, (false, nil) when
// more bytes are needed, and (false, err) when framing is unrecoverably
// broken (ErrMalformedFraming) — which is fatal for the connection.
func requestComplete(buf []byte) (bool, error) {
	headerEnd := bytes.Index(buf, []byte(headerTerminator))
	if headerEnd < 0 {
		if len(buf) > maxStartLineAndHeaders {
			return false, ErrMalformedFraming
		}
		return false, nil
	}
	headerEnd += len(headerTerminator)

	headerBlock := buf[:headerEnd]
	contentLength, hasCL, clErr := peekContentLength(headerBlock)
	if clErr != nil {
		return false, ErrMalformedFraming
	}
	if isChunked(headerBlock) {
		return chunkedComplete(buf, headerEnd), nil
	}
	if hasCL {
		return len(buf) >= headerEnd+contentLength, nil
	}
	return true, nil
}

// peekContentLength scans raw header lines (without building a Header) for
// Content-Length, rejecting conflicting duplicate values as spec §4.3
// mandates ("last-wins for Content-Length (reject if conflicting)" — taken
// together with the fatal-on-conflict framing rule in spec §7, conflicting
// values are treated as malformed rather than silently resolved).
func peekContentLength(headerBlock []byte) (int, bool, error) {
	lines := strings.Split(string(headerBlock), "\r\n")
	found := -1
	for _, line := range lines {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if !strings.EqualFold(name, "Content-Length") {
			continue
		}
		v := strings.TrimSpace(line[idx+1:])
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, false, ErrMalformedFraming
		}
		if found >= 0 && found != n {
			return 0, false, ErrMalformedFraming
		}
		found = n
	}
	if found < 0 {
		return 0, false, nil
	}
	return found, true, nil
}

func isChunked(headerBlock []byte) bool {
	lines := strings.Split(string(headerBlock), "\r\n")
	for _, line := range lines {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if !strings.EqualFold(name, "Transfer-Encoding") {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(line[idx+1:]))
		if strings.Contains(v, "chunked") {
			return true
		}
	}
	return false
}

// parseRequest parses a complete buffer (requestComplete must already have
// returned true) into a Request, per the ordered steps in spec §4.3.
func parseRequest(buf []byte, conn *Connection) (*Request, error) {
	headerEnd := bytes.Index(buf, []byte(headerTerminator))
	if headerEnd < 0 {
		return nil, ErrIncompleteRequest
	}
	headerBlock := buf[:headerEnd]
	bodyStart := headerEnd + len(headerTerminator)

	lineEnd := bytes.IndexByte(headerBlock, '\n')
	if lineEnd < 0 {
		// No header lines: the whole block is the start line.
		lineEnd = len(headerBlock)
	}
	startLine := strings.TrimRight(string(headerBlock[:lineEnd]), "\r\n")
	tokens := strings.Split(startLine, " ")
	if len(tokens) != 3 {
		return nil, ErrMalformedStartLine
	}
	methodRaw, target, version := tokens[0], tokens[1], tokens[2]
	if !strings.HasPrefix(version, "HTTP/1.1") && !strings.HasPrefix(version, "HTTP/1.0") {
		return nil, ErrMalformedStartLine
	}
	method, _ := parseMethod(methodRaw)

	headers := newHeader()
	var headerLines []byte
	if lineEnd < len(headerBlock) {
		headerLines = headerBlock[lineEnd+1:]
	}
	rawHeaderLines := strings.Split(string(headerLines), "\r\n")
	for _, line := range rawHeaderLines {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, ErrMalformedHeader
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if strings.EqualFold(name, "Content-Length") {
			headers.Set(name, value)
			continue
		}
		headers.Add(name, value)
	}

	var body []byte
	switch {
	case isChunked(headerBlock):
		decoded, _, err := decodeChunked(buf, bodyStart)
		if err != nil {
			return nil, err
		}
		body = decoded
		headers.Del("Transfer-Encoding")
		headers.Set("Content-Length", strconv.Itoa(len(body)))
	default:
		if cl := headers.Get("Content-Length"); cl != "" {
			n, err := strconv.Atoi(cl)
			if err != nil || n < 0 {
				return nil, ErrMalformedFraming
			}
			if bodyStart+n > len(buf) {
				return nil, ErrIncompleteRequest
			}
			body = buf[bodyStart : bodyStart+n]
		}
	}

	path, rawQuery := splitTarget(target)
	decodedPath, err := url.PathUnescape(path)
	if err != nil {
		return nil, ErrMalformedStartLine
	}
	query := parseQuery(rawQuery)

	req := &Request{
		Method:     method,
		methodRaw:  methodRaw,
		path:       normalizePath(decodedPath),
		rawQuery:   rawQuery,
		query:      query,
		headers:    headers,
		body:       body,
		pathParams: make(map[string]string),
		conn:       conn,
	}
	return req, nil
}

func splitTarget(target string) (path, rawQuery string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

func parseQuery(raw string) map[string]string {
	q := make(map[string]string)
	if raw == "" {
		return q
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		var k, v string
		if i := strings.IndexByte(pair, '='); i >= 0 {
			k, v = pair[:i], pair[i+1:]
		} else {
			k = pair
		}
		dk, err := url.QueryUnescape(k)
		if err != nil {
			dk = k
		}
		dv, err := url.QueryUnescape(v)
		if err != nil {
			dv = v
		}
		q[dk] = dv // last-wins per spec §3
	}
	return q
}

func normalizePath(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// bodyContentType reports the Content-Type media type and parameters, used
// by callers that interpret the body per spec §4.3 step 5 (form/multipart/
// JSON) rather than by the parser itself, which only retains raw bytes.
func bodyContentType(req *Request) (mediaType string, params map[string]string) {
	ct := req.Header("Content-Type")
	if ct == "" {
		return "", nil
	}
	mt, p, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct, nil
	}
	return mt, p
}
