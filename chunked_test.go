package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChunkedBasic(t *testing.T) {
	data := []byte("5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n")
	body, offset, err := decodeChunked(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, len(data), offset)
}

func TestDecodeChunkedWithExtensionAndTrailer(t *testing.T) {
	data := []byte("3;ieof\r\nabc\r\n0\r\nX-Trailer: done\r\n\r\n")
	body, _, err := decodeChunked(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(body))
}

func TestDecodeChunkedMalformedSize(t *testing.T) {
	data := []byte("zz\r\nhello\r\n0\r\n\r\n")
	_, _, err := decodeChunked(data, 0)
	assert.ErrorIs(t, err, ErrMalformedFraming)
}

func TestChunkedCompleteDetectsTerminator(t *testing.T) {
	incomplete := []byte("5\r\nhello\r\n")
	assert.False(t, chunkedComplete(incomplete, 0))

	complete := []byte("5\r\nhello\r\n0\r\n\r\n")
	assert.True(t, chunkedComplete(complete, 0))
}
