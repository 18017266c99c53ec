package httpcore

// AttributeKey tags a request-scoped value. Keys are plain strings, so
// middleware defines its own as package-level constants with names distinct
// enough to avoid collisions, and stores/retrieves values through
// SetAttribute and Attribute[T], never through a bare
// interface{} map read by callers (spec §3, §9 "shared mutable maps").
type AttributeKey string

// Attribute gets a typed, request-scoped value previously stashed by
// SetAttribute. ok is false if the key is absent or the stored value is not
// of type T.
func Attribute[T any](req *Request, key AttributeKey) (T, bool) {
	var zero T
	raw, exists := req.attributes[key]
	if !exists {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// MustAttribute is Attribute without the ok return, panicking if the key is
// missing or mistyped. Handlers use it for attributes a prior middleware in
// the chain is guaranteed to have set.
func MustAttribute[T any](req *Request, key AttributeKey) T {
	v, ok := Attribute[T](req, key)
	if !ok {
		panic("httpcore: attribute " + string(key) + " missing or wrong type")
	}
	return v
}

// SetAttribute stores a request-scoped value under key. Only the goroutine
// currently processing req may call this — attributes are single-writer by
// construction, never aliased across workers (spec §9).
func SetAttribute(req *Request, key AttributeKey, value any) {
	if req.attributes == nil {
		req.attributes = make(map[AttributeKey]any)
	}
	req.attributes[key] = value
}
