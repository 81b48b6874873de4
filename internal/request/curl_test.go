package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
	"github.com/zebapy/openapi-fetcher/internal/spec"
)

func getItemEndpoint() endpoint.Endpoint {
	return endpoint.Endpoint{
		Path:   "/items/{id}",
		Method: "GET",
		Parameters: []spec.Parameter{
			{Name: "id", In: "path", Required: true},
			{Name: "limit", In: "query"},
			{Name: "filter", In: "query", Required: true},
		},
	}
}

func createItemEndpoint() endpoint.Endpoint {
	return endpoint.Endpoint{
		Path:   "/items",
		Method: "POST",
		RequestBody: &spec.RequestBody{
			Required: true,
			Content: []spec.MediaType{{
				MIME: "application/json",
				Schema: &spec.Schema{
					Type: "object",
					Properties: map[string]*spec.Schema{
						"name": {Type: "string", Example: "widget"},
					},
				},
			}},
		},
	}
}

func TestCurl_SimpleGet(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{
		Path:   "/items/{id}",
		Method: "GET",
		Parameters: []spec.Parameter{
			{Name: "id", In: "path", Required: true},
		},
	}
	out := CompactCurl(ep, Options{
		BaseURL:     "https://api.example.com",
		ParamValues: map[string]string{"id": "42"},
	})
	assert.Equal(t, `curl "https://api.example.com/items/42"`, out)
}

func TestCurl_MethodFlag(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{Path: "/items/{id}", Method: "DELETE",
		Parameters: []spec.Parameter{{Name: "id", In: "path", Required: true}}}
	out := CompactCurl(ep, Options{BaseURL: "https://api.example.com", ParamValues: map[string]string{"id": "1"}})
	assert.Equal(t, `curl -X DELETE "https://api.example.com/items/1"`, out)
}

func TestCurl_PathPlaceholderFallback(t *testing.T) {
	t.Parallel()
	out := CompactCurl(getItemEndpoint(), Options{
		BaseURL:     "https://api.example.com",
		ParamValues: map[string]string{"filter": "new"},
	})
	assert.Contains(t, out, "/items/{id}?", "missing path value keeps its placeholder")
}

func TestCurl_QueryAsymmetry(t *testing.T) {
	t.Parallel()
	// Required query param unfilled: placeholder. Optional unfilled: omitted.
	out := CompactCurl(getItemEndpoint(), Options{
		BaseURL:     "https://api.example.com",
		ParamValues: map[string]string{"id": "7"},
	})
	assert.Contains(t, out, "filter={filter}")
	assert.NotContains(t, out, "limit")

	// Both supplied: both present, escaped.
	out = CompactCurl(getItemEndpoint(), Options{
		BaseURL:     "https://api.example.com",
		ParamValues: map[string]string{"id": "7", "filter": "a b", "limit": "10"},
	})
	assert.Contains(t, out, "limit=10")
	assert.Contains(t, out, "filter=a+b")
}

func TestCurl_PathValueEscaped(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{Path: "/files/{name}", Method: "GET",
		Parameters: []spec.Parameter{{Name: "name", In: "path", Required: true}}}
	out := CompactCurl(ep, Options{BaseURL: "https://api.example.com", ParamValues: map[string]string{"name": "a/b c"}})
	assert.Contains(t, out, "/files/a%2Fb%20c")
}

func TestCurl_BaseURLTrailingSlash(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{Path: "/ping", Method: "GET"}
	out := CompactCurl(ep, Options{BaseURL: "https://api.example.com/"})
	assert.Equal(t, `curl "https://api.example.com/ping"`, out)
}

func TestCurl_AuthVariants(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{Path: "/secure", Method: "GET", HasAuth: true}

	// No token: visible placeholder.
	out := CompactCurl(ep, Options{BaseURL: "https://x"})
	assert.Contains(t, out, `-H "Authorization: Bearer <YOUR_TOKEN>"`)

	// Bearer is the default when a token is present.
	out = CompactCurl(ep, Options{BaseURL: "https://x", AuthToken: "tok123"})
	assert.Contains(t, out, `-H "Authorization: Bearer tok123"`)

	// API key with custom and default header names.
	out = CompactCurl(ep, Options{BaseURL: "https://x", AuthToken: "k", AuthType: AuthAPIKey, AuthHeader: "X-Custom-Key"})
	assert.Contains(t, out, `-H "X-Custom-Key: k"`)
	out = CompactCurl(ep, Options{BaseURL: "https://x", AuthToken: "k", AuthType: AuthAPIKey})
	assert.Contains(t, out, `-H "X-API-Key: k"`)

	// Basic uses the token verbatim.
	out = CompactCurl(ep, Options{BaseURL: "https://x", AuthToken: "dXNlcjpwYXNz", AuthType: AuthBasic})
	assert.Contains(t, out, `-H "Authorization: Basic dXNlcjpwYXNz"`)

	// No auth requirement, no token: no Authorization header at all.
	out = CompactCurl(endpoint.Endpoint{Path: "/open", Method: "GET"}, Options{BaseURL: "https://x"})
	assert.NotContains(t, out, "Authorization")
}

func TestCurl_HeaderParams(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{
		Path:   "/h",
		Method: "GET",
		Parameters: []spec.Parameter{
			{Name: "X-Tenant", In: "header", Required: true},
			{Name: "X-Debug", In: "header"},
		},
	}
	out := CompactCurl(ep, Options{BaseURL: "https://x"})
	assert.Contains(t, out, `-H "X-Tenant: {X-Tenant}"`)
	assert.NotContains(t, out, "X-Debug")

	out = CompactCurl(ep, Options{BaseURL: "https://x", ParamValues: map[string]string{"X-Tenant": "acme", "X-Debug": "1"}})
	assert.Contains(t, out, `-H "X-Tenant: acme"`)
	assert.Contains(t, out, `-H "X-Debug: 1"`)
}

func TestCurl_BodyHandling(t *testing.T) {
	t.Parallel()
	ep := createItemEndpoint()

	// Placeholder body by default.
	out := Curl(ep, Options{BaseURL: "https://x"})
	assert.Contains(t, out, `-H "Content-Type: application/json"`)
	assert.Contains(t, out, `-d '<REQUEST_BODY>'`)

	// Explicit body wins over the example.
	out = Curl(ep, Options{BaseURL: "https://x", BodyJSON: `{"name":"x"}`, IncludeExampleBody: true})
	assert.Contains(t, out, `-d '{"name":"x"}'`)

	// Example body when requested.
	out = Curl(ep, Options{BaseURL: "https://x", IncludeExampleBody: true})
	assert.Contains(t, out, `"name": "widget"`)

	// GET never emits a body even if one is declared.
	getEp := createItemEndpoint()
	getEp.Method = "GET"
	out = Curl(getEp, Options{BaseURL: "https://x"})
	assert.NotContains(t, out, "-d ")
	assert.NotContains(t, out, "Content-Type")
}

func TestCurl_ShellEscaping(t *testing.T) {
	t.Parallel()
	ep := createItemEndpoint()
	out := Curl(ep, Options{BaseURL: "https://x", BodyJSON: `{"note":"it's here"}`})
	assert.Contains(t, out, `it'\''s here`)
	// The escape sequence round-trips: a POSIX shell reading the argument
	// reconstructs the original byte string.
	unescaped := strings.ReplaceAll(`it'\''s here`, `'\''`, "'")
	assert.Equal(t, "it's here", unescaped)
}

func TestCurl_MultilineShape(t *testing.T) {
	t.Parallel()
	ep := createItemEndpoint()
	out := Curl(ep, Options{BaseURL: "https://x"})
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "curl"))
	for _, line := range lines[:len(lines)-1] {
		assert.True(t, strings.HasSuffix(line, `\`), "continuation line %q", line)
	}
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "  "), "indented line %q", line)
	}
	// URL is the final, double-quoted token.
	assert.True(t, strings.HasSuffix(out, `"https://x/items"`))
}

func TestCompactCurl_EquivalentToCurl(t *testing.T) {
	t.Parallel()
	ep := createItemEndpoint()
	opts := Options{BaseURL: "https://x", AuthToken: "t", IncludeExampleBody: true}
	full := Curl(ep, opts)
	compact := CompactCurl(ep, opts)
	assert.Equal(t, continuationRe.ReplaceAllString(full, " "), compact)
	assert.NotContains(t, compact, "\\\n")
}

func TestCompactCurl_SingleSpaceBetweenTokens(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{Path: "/secure", Method: "DELETE", HasAuth: true}
	out := CompactCurl(ep, Options{BaseURL: "https://api.example.com", AuthToken: "abc123"})
	assert.Equal(t, `curl -X DELETE -H "Authorization: Bearer abc123" "https://api.example.com/secure"`, out)
	assert.NotContains(t, out, "  ", "collapsing a continuation must not leave double spaces")
}

func TestCurl_Deterministic(t *testing.T) {
	t.Parallel()
	ep := createItemEndpoint()
	opts := Options{BaseURL: "https://x", IncludeExampleBody: true, ParamValues: map[string]string{}}
	first := Curl(ep, opts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Curl(ep, opts))
	}
}

func TestCurl_ContentTypeFallback(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{
		Path:   "/patch",
		Method: "PATCH",
		RequestBody: &spec.RequestBody{Content: []spec.MediaType{
			{MIME: "application/merge-patch+json"},
		}},
	}
	out := Curl(ep, Options{BaseURL: "https://x"})
	assert.Contains(t, out, `-H "Content-Type: application/merge-patch+json"`)
}
