package endpoint

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/zebapy/openapi-fetcher/internal/spec"
)

func TestDefaultValue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		typ, format string
		want        any
	}{
		{"string", "email", "user@example.com"},
		{"string", "date", "2024-01-01"},
		{"string", "date-time", "2024-01-01T00:00:00Z"},
		{"string", "uuid", "00000000-0000-0000-0000-000000000000"},
		{"string", "", "string"},
		{"integer", "", 0},
		{"number", "", 0},
		{"boolean", "", true},
		{"integer", "email", "user@example.com"}, // format table wins
		{"unknown", "", nil},
	}
	for _, tc := range cases {
		got := DefaultValue(tc.typ, tc.format)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("DefaultValue(%q, %q) = %v, want %v", tc.typ, tc.format, got, tc.want)
		}
	}
	if got := DefaultValue("array", ""); !reflect.DeepEqual(got, []any{}) {
		t.Errorf("array default: %v", got)
	}
	if got := DefaultValue("object", ""); !reflect.DeepEqual(got, map[string]any{}) {
		t.Errorf("object default: %v", got)
	}
}

func TestExampleBody_ObjectSchema(t *testing.T) {
	t.Parallel()
	ep := bodyEndpoint(true, spec.MediaType{
		MIME: "application/json",
		Schema: &spec.Schema{
			Type: "object",
			Properties: map[string]*spec.Schema{
				"name":    {Type: "string", Example: "Rex"},
				"count":   {Type: "integer", Default: 5},
				"email":   {Type: "string", Format: "email"},
				"enabled": {Type: "boolean"},
			},
		},
	})
	raw := ExampleBody(ep)
	if !strings.Contains(raw, "\n  ") {
		t.Errorf("expected two-space pretty printing, got %q", raw)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("example body is not JSON: %v\n%s", err, raw)
	}
	want := map[string]any{
		"name":    "Rex",
		"count":   float64(5),
		"email":   "user@example.com",
		"enabled": true,
	}
	if !reflect.DeepEqual(body, want) {
		t.Errorf("body mismatch:\n got %v\nwant %v", body, want)
	}
}

func TestExampleBody_Degenerate(t *testing.T) {
	t.Parallel()
	// No request body at all.
	if got := ExampleBody(Endpoint{}); got != "{}" {
		t.Errorf("no body: got %q", got)
	}
	// Scalar schema.
	ep := bodyEndpoint(true, spec.MediaType{MIME: "application/json", Schema: &spec.Schema{Type: "string"}})
	if got := ExampleBody(ep); got != "{}" {
		t.Errorf("scalar schema: got %q", got)
	}
	// Object with no properties.
	ep = bodyEndpoint(true, spec.MediaType{MIME: "application/json", Schema: &spec.Schema{Type: "object"}})
	if got := ExampleBody(ep); got != "{}" {
		t.Errorf("empty object: got %q", got)
	}
}
