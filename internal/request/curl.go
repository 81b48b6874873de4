// Package request turns an endpoint plus caller-supplied values into either
// a shell-pasteable cURL command or a live HTTP call. Generation is a pure
// function of its inputs: identical arguments always produce byte-identical
// output.
package request

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
)

// AuthType selects how an auth token is attached to a request.
type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api-key"
	AuthBasic  AuthType = "basic"
)

// DefaultAPIKeyHeader is used for api-key auth when Options.AuthHeader is
// empty.
const DefaultAPIKeyHeader = "X-API-Key"

// TokenPlaceholder appears in generated commands when an endpoint requires
// authentication but no token was supplied.
const TokenPlaceholder = "<YOUR_TOKEN>"

// BodyPlaceholder appears in generated commands when a body is expected but
// neither an explicit body nor an example body was requested.
const BodyPlaceholder = "<REQUEST_BODY>"

// Options configures one generation or execution call. Values are consumed
// and discarded per call; nothing here is retained.
type Options struct {
	BaseURL   string
	AuthToken string
	// AuthType defaults to bearer when a token is present.
	AuthType AuthType
	// AuthHeader names the header for api-key auth. Ignored otherwise.
	AuthHeader string
	// IncludeExampleBody synthesizes a placeholder body when no explicit
	// body is given.
	IncludeExampleBody bool
	// ParamValues maps parameter names to caller-supplied values.
	ParamValues map[string]string
	// BodyJSON overrides any synthesized body. The cURL generator emits it
	// verbatim (shell-escaped); only live execution validates it as JSON.
	BodyJSON string
}

// bodyMethods are the methods for which a declared request body is emitted.
func bodyMethod(method string) bool {
	return method == "POST" || method == "PUT" || method == "PATCH"
}

// Curl renders a multi-line cURL command for the endpoint. Missing path
// parameter values leave their {name} placeholders in the URL: an incomplete
// command is still emitted, never an error. Required query and header
// parameters without values get {name} placeholders too, while optional
// ones are omitted entirely.
func Curl(ep endpoint.Endpoint, opts Options) string {
	tokens := []string{"curl"}

	if ep.Method != "GET" {
		tokens = append(tokens, "-X "+ep.Method)
	}

	fullURL := curlURL(ep, opts)

	if name, value, ok := authHeader(ep, opts); ok {
		tokens = append(tokens, fmt.Sprintf("-H \"%s: %s\"", name, value))
	}

	for _, p := range endpoint.HeaderParams(ep) {
		v := opts.ParamValues[p.Name]
		switch {
		case v != "":
			tokens = append(tokens, fmt.Sprintf("-H \"%s: %s\"", p.Name, v))
		case p.Required:
			tokens = append(tokens, fmt.Sprintf("-H \"%s: {%s}\"", p.Name, p.Name))
		}
	}

	if ep.RequestBody != nil && bodyMethod(ep.Method) {
		ct := endpoint.RequestBodyContentType(ep)
		if ct == "" {
			ct = "application/json"
		}
		tokens = append(tokens, fmt.Sprintf("-H \"Content-Type: %s\"", ct))
		switch {
		case opts.BodyJSON != "":
			tokens = append(tokens, "-d '"+escapeSingleQuotes(opts.BodyJSON)+"'")
		case opts.IncludeExampleBody:
			tokens = append(tokens, "-d '"+escapeSingleQuotes(endpoint.ExampleBody(ep))+"'")
		default:
			tokens = append(tokens, "-d '"+BodyPlaceholder+"'")
		}
	}

	tokens = append(tokens, "\""+fullURL+"\"")

	return strings.Join(tokens, " \\\n  ")
}

// continuationRe matches the space-backslash-newline-indent sequences Curl
// joins its tokens with, so collapsing one leaves a single space behind.
var continuationRe = regexp.MustCompile(`\s*\\\n\s+`)

// CompactCurl renders the one-line form of the same command. It is a
// byte-for-byte collapse of Curl's output, so the two forms can never
// diverge semantically.
func CompactCurl(ep endpoint.Endpoint, opts Options) string {
	return continuationRe.ReplaceAllString(Curl(ep, opts), " ")
}

// curlURL builds the command's URL: path placeholders are substituted when
// values exist and kept literal otherwise; the query string carries supplied
// values, placeholders for unfilled required parameters, and nothing at all
// for unfilled optional ones.
func curlURL(ep endpoint.Endpoint, opts Options) string {
	path := ep.Path
	for _, p := range endpoint.PathParams(ep) {
		if v := opts.ParamValues[p.Name]; v != "" {
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(v))
		}
	}

	full := strings.TrimSuffix(opts.BaseURL, "/") + path

	var query []string
	for _, p := range endpoint.QueryParams(ep) {
		v := opts.ParamValues[p.Name]
		switch {
		case v != "":
			query = append(query, p.Name+"="+url.QueryEscape(v))
		case p.Required:
			query = append(query, p.Name+"={"+p.Name+"}")
		}
	}
	if len(query) > 0 {
		full += "?" + strings.Join(query, "&")
	}
	return full
}

// authHeader picks the single authentication header for the request. With a
// token, the auth type decides the header; basic tokens are used verbatim
// and are expected to be pre-encoded by the caller. Without a token, an
// endpoint that requires auth gets a visible bearer placeholder.
func authHeader(ep endpoint.Endpoint, opts Options) (name, value string, ok bool) {
	if opts.AuthToken != "" {
		switch opts.AuthType {
		case AuthAPIKey:
			h := opts.AuthHeader
			if h == "" {
				h = DefaultAPIKeyHeader
			}
			return h, opts.AuthToken, true
		case AuthBasic:
			return "Authorization", "Basic " + opts.AuthToken, true
		default:
			return "Authorization", "Bearer " + opts.AuthToken, true
		}
	}
	if ep.HasAuth {
		return "Authorization", "Bearer " + TokenPlaceholder, true
	}
	return "", "", false
}

// escapeSingleQuotes embeds s safely inside a single-quoted shell argument:
// every single quote becomes '\'' (close quote, escaped quote, reopen).
func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
