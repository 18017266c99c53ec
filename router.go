package httpcore

import "strings"

// allMethods is the special token matching any verb when no method-specific
// handler is registered at a node (spec §4.5).
const allMethods = "ALL"

// routerNode is one trie node: a static-children map, at most one dynamic
// child (bound by name), at most one wildcard child (terminal), a
// per-method handler table, node-local middleware, and optional mount-point
// state (spec §3 "RouterNode").
type routerNode struct {
	static  map[string]*routerNode
	dynName string
	dynamic *routerNode
	wild    *routerNode

	handlers   map[string]HandlerFunc
	middleware []MiddlewareFunc

	isMount    bool
	mountChild *Router
}

func newRouterNode() *routerNode {
	return &routerNode{
		static:   make(map[string]*routerNode),
		handlers: make(map[string]HandlerFunc),
	}
}

// Router is a trie-based HTTP router: routes are inserted per-method with
// optional per-route middleware, and sub-routers may be mounted at a
// prefix (spec §4.5, C5).
type Router struct {
	root       *routerNode
	middleware []MiddlewareFunc
}

// NewRouter builds an empty router.
func NewRouter() *Router {
	return &Router{root: newRouterNode()}
}

// Use registers a global middleware applied before route lookup.
func (rt *Router) Use(mw MiddlewareFunc) {
	rt.middleware = append(rt.middleware, mw)
}

// Mount inserts prefix into the trie and marks its terminal node as a
// mount point delegating to child (spec §4.5 "Mounting"). If prefix
// contains dynamic segments (e.g. "/accounts/:id/admin"), they are bound
// into the parent's path params by the same traversal lookup() already
// performs for any dynamic node, so no special-casing is needed here.
func (rt *Router) Mount(prefix string, child *Router) {
	segments := splitSegments(normalizeRoutePath(prefix))
	node := rt.root
	for _, seg := range segments {
		node = insertSegment(node, seg)
	}
	node.isMount = true
	node.mountChild = child
}

// Handle registers handler for method at path, with optional per-route
// middleware attached to the terminal node.
func (rt *Router) Handle(method, path string, mw []MiddlewareFunc, handler HandlerFunc) {
	segments := splitSegments(normalizeRoutePath(path))
	node := rt.root
	for _, seg := range segments {
		node = insertSegment(node, seg)
	}
	node.middleware = append(node.middleware, mw...)
	node.handlers[strings.ToUpper(method)] = handler
}

// All registers handler for any verb lacking a more specific match.
func (rt *Router) All(path string, mw []MiddlewareFunc, handler HandlerFunc) {
	rt.Handle(allMethods, path, mw, handler)
}

// GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD register handler for the
// named verb, mirroring the embedded API surface in spec §6.
func (rt *Router) GET(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("GET", path, mw, handler)
}
func (rt *Router) POST(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("POST", path, mw, handler)
}
func (rt *Router) PUT(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("PUT", path, mw, handler)
}
func (rt *Router) DELETE(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("DELETE", path, mw, handler)
}
func (rt *Router) PATCH(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("PATCH", path, mw, handler)
}
func (rt *Router) OPTIONS(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("OPTIONS", path, mw, handler)
}
func (rt *Router) HEAD(path string, handler HandlerFunc, mw ...MiddlewareFunc) {
	rt.Handle("HEAD", path, mw, handler)
}

func insertSegment(node *routerNode, seg string) *routerNode {
	switch {
	case strings.HasPrefix(seg, ":"):
		name := seg[1:]
		if node.dynamic == nil {
			node.dynamic = newRouterNode()
			node.dynName = name
		}
		return node.dynamic
	case seg == "*":
		if node.wild == nil {
			node.wild = newRouterNode()
		}
		return node.wild
	default:
		child, ok := node.static[seg]
		if !ok {
			child = newRouterNode()
			node.static[seg] = child
		}
		return child
	}
}

// matchResult carries everything a successful lookup produces for the
// caller to run as a chain.
type matchResult struct {
	handler    HandlerFunc
	middleware []MiddlewareFunc
	mount      *routerNode
	remainder  string
}

// Apply runs the router's global middleware chain, terminating in a route
// lookup; on a match it runs the collected per-node middleware plus
// handler; on a mount-point match it rewrites the request and recurses
// into the mounted router, restoring state on non-match (spec §4.6
// "Router as middleware").
func (rt *Router) Apply(req *Request, res *Response, notFound HandlerFunc) {
	runChain(rt.middleware, func(req *Request, res *Response) {
		rt.dispatch(req, res, notFound)
	}, req, res)
}

func (rt *Router) dispatch(req *Request, res *Response, notFound HandlerFunc) {
	path := normalizeRoutePath(req.path)
	segments := splitSegments(path)
	params := map[string]string{}

	m, ok := lookup(rt.root, segments, 0, params, req.Method.String())
	if !ok {
		notFound(req, res)
		return
	}

	for k, v := range params {
		req.pathParams[k] = v
	}

	if m.mount != nil {
		originalPath := req.path
		originalBase := req.baseURL
		prefix := strings.TrimSuffix(strings.TrimSuffix(path, "/"+m.remainder), m.remainder)
		req.path = "/" + m.remainder
		req.baseURL = originalBase + prefix

		missed := false
		m.mount.Apply(req, res, func(req *Request, res *Response) {
			missed = true
		})
		if missed {
			req.path = originalPath
			req.baseURL = originalBase
			notFound(req, res)
		}
		return
	}

	runChain(m.middleware, m.handler, req, res)
}

// lookup performs the recursive backtracking match described in spec
// §4.5: static beats dynamic beats wildcard, with parameter bindings
// undone on backtrack.
func lookup(node *routerNode, segments []string, idx int, params map[string]string, method string) (matchResult, bool) {
	if idx == len(segments) {
		if node.isMount {
			return matchResult{mount: node, remainder: ""}, true
		}
		h, ok := resolveHandler(node, method)
		if !ok {
			return matchResult{}, false
		}
		return matchResult{handler: h, middleware: node.middleware}, true
	}

	seg := segments[idx]

	if node.isMount {
		return matchResult{mount: node, remainder: strings.Join(segments[idx:], "/")}, true
	}

	if child, ok := node.static[seg]; ok {
		if m, ok := lookup(child, segments, idx+1, params, method); ok {
			return withMiddleware(node, m), true
		}
	}

	if node.dynamic != nil {
		params[node.dynName] = seg
		if m, ok := lookup(node.dynamic, segments, idx+1, params, method); ok {
			return withMiddleware(node, m), true
		}
		delete(params, node.dynName)
	}

	if node.wild != nil {
		remainder := strings.Join(segments[idx:], "/")
		if node.wild.isMount {
			return matchResult{mount: node.wild, remainder: remainder}, true
		}
		h, ok := resolveHandler(node.wild, method)
		if ok {
			params["*"] = remainder
			return withMiddleware(node, matchResult{handler: h, middleware: node.wild.middleware}), true
		}
	}

	return matchResult{}, false
}

func withMiddleware(node *routerNode, m matchResult) matchResult {
	if len(node.middleware) == 0 {
		return m
	}
	combined := make([]MiddlewareFunc, 0, len(node.middleware)+len(m.middleware))
	combined = append(combined, node.middleware...)
	combined = append(combined, m.middleware...)
	m.middleware = combined
	return m
}

func resolveHandler(node *routerNode, method string) (HandlerFunc, bool) {
	if h, ok := node.handlers[method]; ok {
		return h, true
	}
	if h, ok := node.handlers[allMethods]; ok {
		return h, true
	}
	return nil, false
}

// normalizeRoutePath enforces a leading '/', strips a trailing '/' except
// for the root, and collapses repeated slashes (spec §4.5 "Insertion").
func normalizeRoutePath(p string) string {
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
