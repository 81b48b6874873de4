package endpoint

import (
	"fmt"
	"strings"

	"github.com/zebapy/openapi-fetcher/internal/spec"
)

// enumDisplayLimit caps how many enum values the type string spells out.
const enumDisplayLimit = 3

// TypeString renders a schema as a short human-readable type, for display
// next to body parameters. Precedence: arrays recurse on their items and
// append "[]"; enums render as enum(a|b|c|...) truncated past three values;
// formats render as type(format) with the type defaulting to string; bare
// types render as-is, defaulting to object when absent. A schema with both
// an enum and a format prefers the enum rendering.
func TypeString(s *spec.Schema) string {
	if s == nil {
		return "object"
	}
	if s.Type == "array" && s.Items != nil {
		return TypeString(s.Items) + "[]"
	}
	if len(s.Enum) > 0 {
		vals := s.Enum
		truncated := false
		if len(vals) > enumDisplayLimit {
			vals = vals[:enumDisplayLimit]
			truncated = true
		}
		parts := make([]string, 0, len(vals)+1)
		for _, v := range vals {
			parts = append(parts, fmt.Sprintf("%v", v))
		}
		if truncated {
			parts = append(parts, "...")
		}
		return "enum(" + strings.Join(parts, "|") + ")"
	}
	if s.Format != "" {
		t := s.Type
		if t == "" {
			t = "string"
		}
		return t + "(" + s.Format + ")"
	}
	if s.Type == "" {
		return "object"
	}
	return s.Type
}
