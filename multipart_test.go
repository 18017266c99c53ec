package httpcore

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultipartParseExtractsFieldsAndFiles(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	require.NoError(t, w.WriteField("name", "alice"))

	fw, err := w.CreateFormFile("upload", "hello.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("file contents"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	parser := newMultipartParser()
	result, err := parser.Parse(body.Bytes(), "multipart/form-data; boundary="+w.Boundary())
	require.NoError(t, err)

	require.Equal(t, []string{"alice"}, result.Fields["name"])
	require.Len(t, result.Files, 1)
	require.Equal(t, "hello.txt", result.Files[0].Filename)
	require.Equal(t, "file contents", string(result.Files[0].Bytes))
}

func TestRequestFormURLEncoded(t *testing.T) {
	req := newTestRequest(MethodPOST, "/submit")
	req.headers.Set("Content-Type", "application/x-www-form-urlencoded")
	req.body = []byte("a=1&b=2")

	result, err := req.Form(newMultipartParser())
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, result.Fields["a"])
	require.Equal(t, []string{"2"}, result.Fields["b"])
}
