package endpoint

import (
	"encoding/json"
)

// DefaultValue returns a representative example literal for a schema type
// and format. The format table wins over the type table.
func DefaultValue(typ, format string) any {
	switch format {
	case "email":
		return "user@example.com"
	case "date":
		return "2024-01-01"
	case "date-time":
		return "2024-01-01T00:00:00Z"
	case "uuid":
		return "00000000-0000-0000-0000-000000000000"
	}
	switch typ {
	case "string":
		return "string"
	case "number", "integer":
		return 0
	case "boolean":
		return true
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	}
	return nil
}

// ExampleBody synthesizes a placeholder JSON body for the endpoint's
// selected media type. Object schemas get one field per property, preferring
// the property's example, then its default, then a synthesized value, and
// serialize pretty-printed with two-space indentation. Non-object and
// schema-less bodies synthesize to the literal "{}".
func ExampleBody(ep Endpoint) string {
	mt := bodyMedia(ep)
	if mt == nil || mt.Schema == nil {
		return "{}"
	}
	s := mt.Schema
	if s.Type != "" && s.Type != "object" {
		return "{}"
	}
	if len(s.Properties) == 0 {
		return "{}"
	}
	body := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		switch {
		case prop.Example != nil:
			body[name] = prop.Example
		case prop.Default != nil:
			body[name] = prop.Default
		default:
			body[name] = DefaultValue(prop.Type, prop.Format)
		}
	}
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
