package spec

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Build converts a validated, dereferenced kin-openapi document into the
// passive Document model. Path-level parameters are merged into each
// operation, with operation-level definitions taking precedence; source
// order is preserved otherwise.
func Build(doc *openapi3.T) *Document {
	d := &Document{OpenAPI: safeStr(doc.OpenAPI)}
	if doc.Info != nil {
		d.Info = Info{
			Title:       safeStr(doc.Info.Title),
			Version:     safeStr(doc.Info.Version),
			Description: safeStr(doc.Info.Description),
		}
	}
	for _, s := range doc.Servers {
		if s == nil {
			continue
		}
		d.Servers = append(d.Servers, Server{URL: safeStr(s.URL), Description: safeStr(s.Description)})
	}
	if doc.Paths != nil {
		d.Paths = make(map[string]*PathItem, len(doc.Paths))
		for path, item := range doc.Paths {
			if item == nil {
				continue
			}
			d.Paths[path] = buildPathItem(item)
		}
	}
	return d
}

func buildPathItem(item *openapi3.PathItem) *PathItem {
	shared := buildParameters(item.Parameters)
	return &PathItem{
		Get:     buildOperation(item.Get, shared),
		Post:    buildOperation(item.Post, shared),
		Put:     buildOperation(item.Put, shared),
		Patch:   buildOperation(item.Patch, shared),
		Delete:  buildOperation(item.Delete, shared),
		Options: buildOperation(item.Options, shared),
		Head:    buildOperation(item.Head, shared),
	}
}

func buildOperation(op *openapi3.Operation, shared []Parameter) *Operation {
	if op == nil {
		return nil
	}
	out := &Operation{
		OperationID: safeStr(op.OperationID),
		Summary:     safeStr(op.Summary),
		Description: safeStr(op.Description),
	}
	for _, t := range op.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out.Tags = append(out.Tags, t)
		}
	}

	own := buildParameters(op.Parameters)
	out.Parameters = mergeParameters(shared, own)

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		out.RequestBody = &RequestBody{
			Required: op.RequestBody.Value.Required,
			Content:  buildContent(op.RequestBody.Value.Content),
		}
	}

	if op.Security != nil {
		for _, req := range *op.Security {
			sr := make(SecurityRequirement, len(req))
			for scheme, scopes := range req {
				sr[scheme] = append([]string(nil), scopes...)
			}
			out.Security = append(out.Security, sr)
		}
	}
	return out
}

func buildParameters(refs openapi3.Parameters) []Parameter {
	var out []Parameter
	for _, pref := range refs {
		if pref == nil || pref.Value == nil {
			continue
		}
		p := pref.Value
		out = append(out, Parameter{
			Name:        safeStr(p.Name),
			In:          safeStr(p.In),
			Required:    p.Required,
			Description: safeStr(p.Description),
			Schema:      buildSchema(p.Schema),
		})
	}
	return out
}

// mergeParameters combines path-level and operation-level parameters. An
// operation-level parameter replaces a path-level one sharing name+in; the
// remaining path-level parameters keep their position ahead of the
// operation's own.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	overridden := make(map[string]struct{}, len(own))
	for _, p := range own {
		overridden[p.In+":"+p.Name] = struct{}{}
	}
	merged := make([]Parameter, 0, len(shared)+len(own))
	for _, p := range shared {
		if _, ok := overridden[p.In+":"+p.Name]; ok {
			continue
		}
		merged = append(merged, p)
	}
	return append(merged, own...)
}

func buildContent(content openapi3.Content) []MediaType {
	if len(content) == 0 {
		return nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]MediaType, 0, len(keys))
	for _, mime := range keys {
		mt := content[mime]
		if mt == nil {
			continue
		}
		var ex any
		if mt.Example != nil {
			ex = mt.Example
		} else if len(mt.Examples) > 0 {
			// Pick the first example value deterministically by key.
			names := make([]string, 0, len(mt.Examples))
			for name := range mt.Examples {
				names = append(names, name)
			}
			sort.Strings(names)
			if ref := mt.Examples[names[0]]; ref != nil && ref.Value != nil {
				ex = ref.Value.Value
			}
		}
		out = append(out, MediaType{
			MIME:    mime,
			Schema:  buildSchema(mt.Schema),
			Example: ex,
		})
	}
	return out
}

func buildSchema(ref *openapi3.SchemaRef) *Schema {
	return buildSchemaRec(ref, map[*openapi3.Schema]bool{})
}

func buildSchemaRec(ref *openapi3.SchemaRef, seen map[*openapi3.Schema]bool) *Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	v := ref.Value
	if seen[v] {
		// Self-referencing schema: cut the cycle with a childless node.
		return &Schema{Type: safeStr(v.Type), Format: safeStr(v.Format), Description: safeStr(v.Description)}
	}
	seen[v] = true
	defer delete(seen, v)
	s := &Schema{
		Type:        safeStr(v.Type),
		Format:      safeStr(v.Format),
		Description: safeStr(v.Description),
		Default:     v.Default,
		Example:     v.Example,
		Required:    append([]string(nil), v.Required...),
	}
	if len(v.Enum) > 0 {
		s.Enum = append([]any(nil), v.Enum...)
	}
	if v.Items != nil {
		s.Items = buildSchemaRec(v.Items, seen)
	}
	if len(v.Properties) > 0 {
		s.Properties = make(map[string]*Schema, len(v.Properties))
		for name, pref := range v.Properties {
			if ps := buildSchemaRec(pref, seen); ps != nil {
				s.Properties[name] = ps
			}
		}
	}
	return s
}

func safeStr(s string) string { return strings.TrimSpace(s) }
