package httpcore

import (
	"strings"
)

// Method enumerates the verbs spec §3 names explicitly, with MethodOther
// for anything outside that set.
type Method int

const (
	MethodOther Method = iota
	MethodGET
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodPATCH
	MethodOPTIONS
	MethodHEAD
)

var methodNames = map[string]Method{
	"GET":     MethodGET,
	"POST":    MethodPOST,
	"PUT":     MethodPUT,
	"DELETE":  MethodDELETE,
	"PATCH":   MethodPATCH,
	"OPTIONS": MethodOPTIONS,
	"HEAD":    MethodHEAD,
}

func (m Method) String() string {
	for name, v := range methodNames {
		if v == m {
			return name
		}
	}
	return "OTHER"
}

func parseMethod(raw string) (Method, string) {
	if m, ok := methodNames[raw]; ok {
		return m, raw
	}
	return MethodOther, raw
}

// Header is a case-insensitive, insertion-order header bag. Duplicate keys
// join with ", " on Add (per HTTP's field-combining rule, spec §4.3), while
// Set replaces the whole value, last-wins.
type Header struct {
	order []string          // canonical keys in first-seen order
	vals  map[string]string  // canonical key -> combined value
	exact map[string]string  // canonical key -> original casing, for emission
}

func newHeader() Header {
	return Header{vals: make(map[string]string), exact: make(map[string]string)}
}

func canonicalHeaderKey(key string) string {
	return strings.ToLower(key)
}

// Add appends value to any existing value for key, joined with ", ",
// matching HTTP's rule for combining repeated header fields. The first
// casing seen for a key is preserved for wire emission.
func (h *Header) Add(key, value string) {
	if h.vals == nil {
		*h = newHeader()
	}
	ck := canonicalHeaderKey(key)
	if existing, ok := h.vals[ck]; ok {
		h.vals[ck] = existing + ", " + value
		return
	}
	h.order = append(h.order, ck)
	h.vals[ck] = value
	h.exact[ck] = key
}

// Set replaces any existing value for key (last-wins), preserving original
// insertion position if the key already existed.
func (h *Header) Set(key, value string) {
	if h.vals == nil {
		*h = newHeader()
	}
	ck := canonicalHeaderKey(key)
	if _, ok := h.vals[ck]; !ok {
		h.order = append(h.order, ck)
	}
	h.vals[ck] = value
	h.exact[ck] = key
}

// Get returns the value for key (case-insensitive), or "" if absent.
func (h Header) Get(key string) string {
	return h.vals[canonicalHeaderKey(key)]
}

// Has reports whether key is present, case-insensitively.
func (h Header) Has(key string) bool {
	_, ok := h.vals[canonicalHeaderKey(key)]
	return ok
}

// Del removes key, case-insensitively.
func (h *Header) Del(key string) {
	ck := canonicalHeaderKey(key)
	if _, ok := h.vals[ck]; !ok {
		return
	}
	delete(h.vals, ck)
	delete(h.exact, ck)
	for i, k := range h.order {
		if k == ck {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Each calls fn once per header in insertion order, using the original
// casing for the key, for wire emission (spec §4.4 step 4).
func (h Header) Each(fn func(key, value string)) {
	for _, ck := range h.order {
		fn(h.exact[ck], h.vals[ck])
	}
}

// Request is immutable after construction except for PathParams (filled in
// during routing), the mount-rewritten path/baseURL, and request-scoped
// attributes stored by SetAttribute (spec §3). It is
// owned exclusively by the worker processing it; no field is ever written
// by more than one goroutine at a time.
type Request struct {
	Method     Method
	methodRaw  string
	path       string
	rawQuery   string
	query      map[string]string
	headers    Header
	body       []byte
	pathParams map[string]string
	baseURL    string
	attributes map[AttributeKey]any

	conn *Connection
}

// Path returns the current (possibly mount-rewritten) path.
func (r *Request) Path() string { return r.path }

// BaseURL returns the prefix accumulated by mount points traversed so far.
func (r *Request) BaseURL() string { return r.baseURL }

// RawQuery returns the unparsed query string (without the leading '?').
func (r *Request) RawQuery() string { return r.rawQuery }

// Query returns the query parameter named key, or "" if absent. Duplicate
// parameters resolve last-wins (spec §3).
func (r *Request) Query(key string) string { return r.query[key] }

// QueryDefault returns Query(key), or def if the key is absent.
func (r *Request) QueryDefault(key, def string) string {
	if v, ok := r.query[key]; ok {
		return v
	}
	return def
}

// PathParam returns the bound value for a dynamic/wildcard route segment.
func (r *Request) PathParam(key string) string { return r.pathParams[key] }

// Header returns the named request header, case-insensitive.
func (r *Request) Header(key string) string { return r.headers.Get(key) }

// Body returns the raw request body bytes.
func (r *Request) Body() []byte { return r.body }

// BodyText returns the body decoded as UTF-8 text.
func (r *Request) BodyText() string { return string(r.body) }

// Connection returns the owning connection (for handlers that need peer
// address or TLS-free connection metadata).
func (r *Request) Connection() *Connection { return r.conn }
