package httpcore

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
)

// UploadedFile is one file part extracted from a multipart/form-data body
// (spec §6 collaborator contract: "{fields, files} where each file has
// filename, content-type, and bytes").
type UploadedFile struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// MultipartResult is the out-of-scope collaborator's output shape.
type MultipartResult struct {
	Fields map[string][]string
	Files  []UploadedFile
}

// MultipartParser is the collaborator interface spec §6 names: "given body
// bytes and Content-Type, produces {fields, files}". Field/file extraction
// beyond this is explicitly out of scope (spec §1).
type MultipartParser interface {
	Parse(body []byte, contentType string) (*MultipartResult, error)
}

// stdMultipartParser is the default MultipartParser, built on mime/multipart
// since no third-party multipart parser appears anywhere in the retrieval
// pack (see DESIGN.md — this is the one ambient concern left on the
// standard library for lack of a groundable alternative).
type stdMultipartParser struct{}

func newMultipartParser() MultipartParser { return stdMultipartParser{} }

func (stdMultipartParser) Parse(body []byte, contentType string) (*MultipartResult, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, err
	}
	boundary, ok := params["boundary"]
	if !ok {
		return nil, ErrMalformedFraming
	}

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	result := &MultipartResult{Fields: make(map[string][]string)}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}

		if filename := part.FileName(); filename != "" {
			result.Files = append(result.Files, UploadedFile{
				Filename:    filename,
				ContentType: part.Header.Get("Content-Type"),
				Bytes:       data,
			})
			continue
		}

		name := part.FormName()
		result.Fields[name] = append(result.Fields[name], string(data))
	}

	return result, nil
}

// Form decodes an application/x-www-form-urlencoded or multipart/form-data
// body into a MultipartResult-shaped view, matching spec §4.3 step 5.
func (r *Request) Form(parser MultipartParser) (*MultipartResult, error) {
	mediaType, _ := bodyContentType(r)
	switch mediaType {
	case "multipart/form-data":
		return parser.Parse(r.body, r.Header("Content-Type"))
	case "application/x-www-form-urlencoded":
		q := parseQuery(string(r.body))
		fields := make(map[string][]string, len(q))
		for k, v := range q {
			fields[k] = []string{v}
		}
		return &MultipartResult{Fields: fields}, nil
	default:
		return &MultipartResult{Fields: map[string][]string{}}, nil
	}
}
