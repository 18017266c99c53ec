package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainRunsInOrderThenTerminal(t *testing.T) {
	var order []string
	mw := []MiddlewareFunc{
		func(req *Request, res *Response, next func()) {
			order = append(order, "a")
			next()
		},
		func(req *Request, res *Response, next func()) {
			order = append(order, "b")
			next()
		},
	}
	terminal := func(req *Request, res *Response) { order = append(order, "terminal") }

	runChain(mw, terminal, newTestRequest(MethodGET, "/"), &Response{headers: newHeader()})

	assert.Equal(t, []string{"a", "b", "terminal"}, order)
}

func TestChainShortCircuit(t *testing.T) {
	ran := false
	mw := []MiddlewareFunc{
		func(req *Request, res *Response, next func()) {
			// does not call next: short-circuits (spec §4.6)
		},
	}
	terminal := func(req *Request, res *Response) { ran = true }

	runChain(mw, terminal, newTestRequest(MethodGET, "/"), &Response{headers: newHeader()})

	assert.False(t, ran)
}

// Double invocation of next() is undefined behavior per spec §4.6; the
// implementation must detect and fail fast rather than silently re-running
// downstream middleware.
func TestChainDoubleInvocationPanics(t *testing.T) {
	mw := []MiddlewareFunc{
		func(req *Request, res *Response, next func()) {
			next()
			next()
		},
	}
	terminal := func(req *Request, res *Response) {}

	assert.Panics(t, func() {
		runChain(mw, terminal, newTestRequest(MethodGET, "/"), &Response{headers: newHeader()})
	})
}
