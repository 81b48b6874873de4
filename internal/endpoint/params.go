package endpoint

import (
	"sort"

	"github.com/zebapy/openapi-fetcher/internal/spec"
)

// PathParams returns the endpoint's path parameters in source order.
func PathParams(ep Endpoint) []spec.Parameter { return paramsIn(ep, "path") }

// QueryParams returns the endpoint's query parameters in source order.
func QueryParams(ep Endpoint) []spec.Parameter { return paramsIn(ep, "query") }

// HeaderParams returns the endpoint's header parameters in source order.
func HeaderParams(ep Endpoint) []spec.Parameter { return paramsIn(ep, "header") }

// Cookie parameters are modeled but never selected by any filter.
func paramsIn(ep Endpoint, in string) []spec.Parameter {
	var out []spec.Parameter
	for _, p := range ep.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// BodyName is the sentinel parameter name used when a request body schema
// has a type but no named properties: the whole payload is one opaque value.
const BodyName = "(body)"

// BodyParam is one logical field extracted from a request body schema.
type BodyParam struct {
	Name        string
	Type        string // human-readable, e.g. string(email), integer, string[]
	Required    bool
	Description string
	Example     any
}

// preferred media types for body parameter extraction, in order.
var bodyMediaTypes = []string{"application/json", "application/merge-patch+json"}

// bodyMedia selects the media type whose schema drives body parameter
// extraction: application/json, then application/merge-patch+json, else the
// first declared entry.
func bodyMedia(ep Endpoint) *spec.MediaType {
	rb := ep.RequestBody
	if rb == nil || len(rb.Content) == 0 {
		return nil
	}
	for _, want := range bodyMediaTypes {
		for i := range rb.Content {
			if rb.Content[i].MIME == want {
				return &rb.Content[i]
			}
		}
	}
	return &rb.Content[0]
}

// BodyParams extracts the logical body fields of an endpoint. Object schemas
// yield one entry per property, required iff the property name appears in
// the schema's own required list. A schema with a type but no properties
// yields a single BodyName sentinel whose required flag comes from the
// request body itself. Anything else yields nothing.
func BodyParams(ep Endpoint) []BodyParam {
	mt := bodyMedia(ep)
	if mt == nil || mt.Schema == nil {
		return nil
	}
	s := mt.Schema
	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]BodyParam, 0, len(names))
		for _, name := range names {
			prop := s.Properties[name]
			example := prop.Example
			if example == nil {
				example = prop.Default
			}
			out = append(out, BodyParam{
				Name:        name,
				Type:        TypeString(prop),
				Required:    contains(s.Required, name),
				Description: prop.Description,
				Example:     example,
			})
		}
		return out
	}
	if s.Type != "" {
		return []BodyParam{{
			Name:        BodyName,
			Type:        TypeString(s),
			Required:    ep.RequestBody.Required,
			Description: s.Description,
			Example:     s.Example,
		}}
	}
	return nil
}

// preferred content types for the generated Content-Type header, in order.
var contentTypePreference = []string{
	"application/json",
	"application/merge-patch+json",
	"application/json-patch+json",
	"text/json",
}

// RequestBodyContentType resolves the Content-Type header value for the
// endpoint's request body. It is deliberately not always application/json:
// PATCH-style media types win when they are the only ones declared. Returns
// "" when no body content is declared.
func RequestBodyContentType(ep Endpoint) string {
	rb := ep.RequestBody
	if rb == nil || len(rb.Content) == 0 {
		return ""
	}
	for _, want := range contentTypePreference {
		for _, mt := range rb.Content {
			if mt.MIME == want {
				return want
			}
		}
	}
	return rb.Content[0].MIME
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
