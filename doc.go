// Package httpcore is an embeddable HTTP/1.1 server framework: a
// single-threaded readiness-driven event loop, two bounded worker pools for
// read-parse and write-dispatch, a trie-based router with mountable
// sub-routers, and a composable middleware pipeline.
//
// It does not aim to replace net/http for general use; it targets callers
// that need direct control over connection lifecycle, dispatch, and
// backpressure without a heavyweight runtime.
package httpcore
