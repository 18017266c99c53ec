package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecEncodeDecodeRoundTrip(t *testing.T) {
	codec := newJSONCodec()

	data, err := codec.Encode(map[string]any{"ok": true, "key": "k1"})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, codec.Decode(data, &out))
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "k1", out["key"])
}

func TestRequestJSONWrapsDecodeErrors(t *testing.T) {
	req := newTestRequest(MethodPOST, "/x")
	req.body = []byte("not json")

	var out map[string]any
	err := req.JSON(newJSONCodec(), &out)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "/x", decodeErr.Path)
}
