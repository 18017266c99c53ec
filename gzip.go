package httpcore

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// gzipCompress compresses body using klauspost/compress/gzip, a drop-in,
// faster implementation of the standard library's gzip writer — grounded
// on the teacher's direct dependency on klauspost/compress for its own
// response decompression needs (see SPEC_FULL.md DOMAIN STACK).
func gzipCompress(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
