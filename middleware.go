package httpcore

import "fmt"

// HandlerFunc handles a fully-parsed request and writes a response.
type HandlerFunc func(req *Request, res *Response)

// MiddlewareFunc decides whether to forward to the rest of the chain.
// It is expected to either call next exactly once (forward, optionally
// post-processing after it returns), or not call it at all
// (short-circuit, having written a response) — spec §4.6.
type MiddlewareFunc func(req *Request, res *Response, next func())

// chain runs an ordered list of middleware followed by a terminal handler.
// Each chain value is single-use: next() advances a cursor shared by the
// closures handed to each middleware, and a middleware that calls it twice
// is caught rather than silently re-running downstream handlers (spec §4.6
// "double invocation is undefined behavior... impl must detect and fail
// fast").
type chain struct {
	middlewares []MiddlewareFunc
	terminal    HandlerFunc
	req         *Request
	res         *Response
	cursor      int
}

func newChain(mw []MiddlewareFunc, terminal HandlerFunc, req *Request, res *Response) *chain {
	return &chain{middlewares: mw, terminal: terminal, req: req, res: res}
}

// run starts the chain from its first middleware.
func (c *chain) run() {
	c.next()
}

func (c *chain) next() {
	if c.cursor >= len(c.middlewares) {
		c.terminal(c.req, c.res)
		return
	}
	mw := c.middlewares[c.cursor]
	idx := c.cursor
	c.cursor++
	called := false
	mw(c.req, c.res, func() {
		if called {
			panic(fmt.Sprintf("httpcore: middleware at index %d invoked next() more than once", idx))
		}
		called = true
		c.next()
	})
}

// runChain builds and runs a chain in one call, the common case for both
// the router's global chain and its per-route inner chain.
func runChain(mw []MiddlewareFunc, terminal HandlerFunc, req *Request, res *Response) {
	newChain(mw, terminal, req, res).run()
}
