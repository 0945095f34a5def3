// Package transport selects how API calls travel. The Local round tripper
// serves API-shaped requests straight from an in-process handler, so a
// caller holding a plain *http.Client cannot tell whether its requests ever
// touched a network. Everything else is delegated to a real transport.
// The variant is chosen once at process start and injected; nothing here
// rewrites global state.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Local is an http.RoundTripper that dispatches /api/ requests to Handler
// without opening a socket and forwards everything else to Fallback.
type Local struct {
	Handler  http.Handler
	Fallback http.RoundTripper
}

// NewClient returns an *http.Client whose API calls are served in-process by
// handler. Non-API URLs go out over the default transport unchanged.
func NewClient(handler http.Handler) *http.Client {
	return &http.Client{
		Transport: &Local{Handler: handler, Fallback: http.DefaultTransport},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Local) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.Contains(req.URL.Path, "/api/") {
		fallback := t.Fallback
		if fallback == nil {
			fallback = http.DefaultTransport
		}
		return fallback.RoundTrip(req)
	}

	local, err := normalizeBody(req)
	if err != nil {
		return nil, fmt.Errorf("preparing local request: %w", err)
	}

	rec := &recorder{header: make(http.Header), status: http.StatusOK}
	t.Handler.ServeHTTP(rec, local)
	return rec.response(req), nil
}

// normalizeBody flattens multipart form bodies into a JSON object of their
// fields so the router always sees JSON; other bodies pass through raw.
func normalizeBody(req *http.Request) (*http.Request, error) {
	local := req.Clone(req.Context())

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return local, nil
	}

	if err := local.ParseMultipartForm(4 << 20); err != nil {
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}

	flat := make(map[string]string, len(local.MultipartForm.Value))
	for key, values := range local.MultipartForm.Value {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}

	body, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("encoding form fields: %w", err)
	}

	local.Body = io.NopCloser(bytes.NewReader(body))
	local.ContentLength = int64(len(body))
	local.Header = local.Header.Clone()
	local.Header.Set("Content-Type", "application/json")
	return local, nil
}

// recorder is a minimal in-memory http.ResponseWriter.
type recorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) Write(p []byte) (int, error) { return r.body.Write(p) }

func (r *recorder) WriteHeader(status int) { r.status = status }

// response converts the recorded output into a standard *http.Response,
// shaped exactly like a network round trip's.
func (r *recorder) response(req *http.Request) *http.Response {
	body := r.body.Bytes()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.status, http.StatusText(r.status)),
		StatusCode:    r.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
