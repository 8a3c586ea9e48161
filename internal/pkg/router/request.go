package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

const (
	sniffLen         = 512
	multipartMemory  = 8 << 20
	defaultMaxUpload = 10 << 20
)

// Request wraps http.Request with decoding helpers for handlers.
type Request struct {
	*http.Request
}

func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeBody decodes a single JSON object into dst. Unknown fields and
// trailing data are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}

// ParseMultipart limits the body to maxBytes and parses it as
// multipart/form-data. Non-positive maxBytes uses 10 MiB.
func (r *Request) ParseMultipart(maxBytes int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return goerror.NewInvalidFormat("Invalid request content-type")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return goerror.NewInvalidFormat("File is too large")
		}
		return goerror.NewInvalidFormat()
	}
	return nil
}

// FormString returns a trimmed multipart or urlencoded form value.
func (r *Request) FormString(key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// File is an uploaded multipart file. ContentType is sniffed from its first
// bytes, not taken from the client.
type File struct {
	io.Reader
	Filename    string
	Size        int64
	ContentType string

	f multipart.File
}

func (f *File) Close() error { return f.f.Close() }

// FormFile opens the uploaded file for field. ParseMultipart must run first.
// A missing file is a validation error on that field.
func (r *Request) FormFile(field string) (*File, error) {
	f, hdr, err := r.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, goerror.NewInvalidInput(nil, field, field+" is required")
	}
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, goerror.NewInvalidFormat()
	}
	head = head[:n]

	return &File{
		Reader:      io.MultiReader(bytes.NewReader(head), f),
		Filename:    hdr.Filename,
		Size:        hdr.Size,
		ContentType: http.DetectContentType(head),
		f:           f,
	}, nil
}
