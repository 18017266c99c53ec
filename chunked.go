package httpcore

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Chunked transfer-encoding decode, grounded on the line/hex-length parsing
// in the teacher's sibling example badu-http (utils_chunks.go), adapted
// from a bufio.Reader-based decoder into one that operates on an
// already-accumulated byte slice (the event loop never blocks mid-decode).
// The completeness predicate runs this same decoder over the accumulated
// bytes, so the parser only sees a chunked body that decodes in full.

const maxChunkLineLength = 4096

// decodeChunked decodes an HTTP/1.1 chunked body starting at data[offset],
// returning the reassembled body bytes and the offset just past the final
// trailer CRLF.
func decodeChunked(data []byte, offset int) ([]byte, int, error) {
	r := bufio.NewReader(bytes.NewReader(data[offset:]))
	var body []byte

	for {
		sizeLine, err := readChunkLine(r)
		if err != nil {
			return nil, 0, ErrMalformedFraming
		}
		size, err := parseHexUint(sizeLine)
		if err != nil {
			return nil, 0, ErrMalformedFraming
		}
		if size == 0 {
			// Trailer headers (if any) until the blank line.
			for {
				line, err := readChunkLine(r)
				if err != nil {
					return nil, 0, ErrMalformedFraming
				}
				if len(line) == 0 {
					break
				}
			}
			consumed := len(data) - offset - r.Buffered()
			return body, offset + consumed, nil
		}

		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, 0, ErrMalformedFraming
		}
		body = append(body, chunk...)

		// Each chunk is followed by a bare CRLF.
		crlf, err := readChunkLine(r)
		if err != nil || len(crlf) != 0 {
			return nil, 0, ErrMalformedFraming
		}
	}
}

// chunkedComplete reports whether data[offset:] holds a full chunked body
// (ends with the "0\r\n\r\n" terminator), walking chunk-by-chunk rather
// than substring-searching for the terminator so a terminator-shaped byte
// sequence inside chunk data cannot produce a false positive.
func chunkedComplete(data []byte, offset int) bool {
	_, _, err := decodeChunked(data, offset)
	if err == nil {
		return true
	}
	return false
}

func readChunkLine(b *bufio.Reader) ([]byte, error) {
	p, err := b.ReadSlice('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		} else if err == bufio.ErrBufferFull {
			err = ErrLineTooLong
		}
		return nil, err
	}
	if len(p) >= maxChunkLineLength {
		return nil, ErrLineTooLong
	}
	p = trimTrailingCRLF(p)
	return removeChunkExtension(p), nil
}

func trimTrailingCRLF(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\r' || b[len(b)-1] == '\n' || b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// removeChunkExtension strips a "; token=value" chunk-extension suffix,
// e.g. "0;ieof" -> "0". Extensions are accepted and ignored, never acted
// upon, matching common HTTP/1.1 client/server practice.
func removeChunkExtension(p []byte) []byte {
	if i := bytes.IndexByte(p, ';'); i >= 0 {
		return p[:i]
	}
	return p
}

func parseHexUint(v []byte) (uint64, error) {
	if len(v) == 0 {
		return 0, errors.New("httpcore: empty chunk size")
	}
	var n uint64
	for i, b := range v {
		var d byte
		switch {
		case '0' <= b && b <= '9':
			d = b - '0'
		case 'a' <= b && b <= 'f':
			d = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			d = b - 'A' + 10
		default:
			return 0, errors.New("httpcore: invalid byte in chunk length")
		}
		if i >= 16 {
			return 0, errors.New("httpcore: chunk length too large")
		}
		n = n<<4 | uint64(d)
	}
	return n, nil
}
