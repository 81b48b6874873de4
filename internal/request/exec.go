package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
)

// ErrUnresolvedParams means the request still has {name} placeholders or
// empty required parameters. Unlike the cURL generator, live execution never
// sends an incomplete request.
var ErrUnresolvedParams = errors.New("request has unresolved parameters")

// ErrBodyJSON means the caller-supplied raw body is not valid JSON.
var ErrBodyJSON = errors.New("request body is not valid JSON")

// Response is the normalized record of one executed request. A non-2xx
// status is a valid, if unsuccessful, result rather than an error.
type Response struct {
	Status      int
	StatusText  string
	Body        string
	ContentType string
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// BuildRequest resolves the URL, headers, and body for a live call, applying
// the same URL and header construction as the cURL generator but refusing
// placeholders: missing path parameters and empty required query or header
// parameters fail with ErrUnresolvedParams, and BodyJSON must parse.
func BuildRequest(ep endpoint.Endpoint, opts Options) (fullURL string, header http.Header, body string, err error) {
	if missing := missingParams(ep, opts); len(missing) > 0 {
		return "", nil, "", fmt.Errorf("%w: %s", ErrUnresolvedParams, strings.Join(missing, ", "))
	}
	if opts.BodyJSON != "" && !json.Valid([]byte(opts.BodyJSON)) {
		return "", nil, "", ErrBodyJSON
	}

	fullURL = curlURL(ep, opts)

	header = make(http.Header)
	if name, value, ok := authHeader(ep, opts); ok && opts.AuthToken != "" {
		header.Set(name, value)
	}
	for _, p := range endpoint.HeaderParams(ep) {
		if v := opts.ParamValues[p.Name]; v != "" {
			header.Set(p.Name, v)
		}
	}

	if ep.RequestBody != nil && bodyMethod(ep.Method) {
		ct := endpoint.RequestBodyContentType(ep)
		if ct == "" {
			ct = "application/json"
		}
		header.Set("Content-Type", ct)
		switch {
		case opts.BodyJSON != "":
			body = opts.BodyJSON
		case opts.IncludeExampleBody:
			body = endpoint.ExampleBody(ep)
		}
	}
	return fullURL, header, body, nil
}

// missingParams lists every parameter that would leave a placeholder behind:
// all unfilled path parameters, plus required query and header parameters
// without values.
func missingParams(ep endpoint.Endpoint, opts Options) []string {
	var missing []string
	for _, p := range endpoint.PathParams(ep) {
		if opts.ParamValues[p.Name] == "" {
			missing = append(missing, p.Name)
		}
	}
	for _, p := range endpoint.QueryParams(ep) {
		if p.Required && opts.ParamValues[p.Name] == "" {
			missing = append(missing, p.Name)
		}
	}
	for _, p := range endpoint.HeaderParams(ep) {
		if p.Required && opts.ParamValues[p.Name] == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// Execute issues the live HTTP call. Responses whose content type contains
// application/json are re-serialized pretty-printed; everything else passes
// through as raw text. Transport-level failures return an error and no
// Response. No retry is attempted; timeouts are whatever the client
// enforces.
func Execute(ctx context.Context, client *http.Client, ep endpoint.Endpoint, opts Options) (*Response, error) {
	fullURL, header, body, err := BuildRequest(ep, opts)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequestWithContext(ctx, ep.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", ep.Method, fullURL, err)
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute %s %s: %w", ep.Method, fullURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	text := string(data)
	if strings.Contains(contentType, "application/json") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err == nil {
			text = buf.String()
		}
	}

	return &Response{
		Status:      resp.StatusCode,
		StatusText:  http.StatusText(resp.StatusCode),
		Body:        text,
		ContentType: contentType,
	}, nil
}
