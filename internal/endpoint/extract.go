// Package endpoint derives flat, display-ready endpoint descriptors from a
// loaded spec document. Everything here is a pure computation over
// already-resident data; derivations are safely recomputable at any time.
package endpoint

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zebapy/openapi-fetcher/internal/spec"
)

// Endpoint is one HTTP operation on one path.
type Endpoint struct {
	Path        string
	Method      string // uppercase verb
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []spec.Parameter
	RequestBody *spec.RequestBody
	// HasAuth is true when the operation declares at least one security
	// requirement. The requirement's contents are not inspected further.
	HasAuth bool
}

// UntaggedGroup is the display group for endpoints that carry no tags. The
// endpoint's own Tags field stays empty; the group name exists purely for
// grouping.
const UntaggedGroup = "Untagged"

type methodOp struct {
	method string
	op     *spec.Operation
}

func operations(item *spec.PathItem) []methodOp {
	return []methodOp{
		{"GET", item.Get},
		{"POST", item.Post},
		{"PUT", item.Put},
		{"PATCH", item.Patch},
		{"DELETE", item.Delete},
		{"OPTIONS", item.Options},
		{"HEAD", item.Head},
	}
}

// Extract walks the document's path/operation tree and returns one Endpoint
// per (path, method) pair, sorted by path (locale-aware) and then by the
// uppercase method string. The method tie-break is a plain string sort, so
// DELETE < GET < HEAD < OPTIONS < PATCH < POST < PUT.
func Extract(doc *spec.Document) []Endpoint {
	var out []Endpoint
	for path, item := range doc.Paths {
		if item == nil {
			continue
		}
		for _, mo := range operations(item) {
			if mo.op == nil {
				continue
			}
			out = append(out, Endpoint{
				Path:        path,
				Method:      mo.method,
				OperationID: mo.op.OperationID,
				Summary:     mo.op.Summary,
				Description: mo.op.Description,
				Tags:        mo.op.Tags,
				Parameters:  mo.op.Parameters,
				RequestBody: mo.op.RequestBody,
				HasAuth:     len(mo.op.Security) > 0,
			})
		}
	}
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := c.CompareString(out[i].Path, out[j].Path); cmp != 0 {
			return cmp < 0
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// TagGroup is an ordered grouping of endpoints under one tag.
type TagGroup struct {
	Tag       string
	Endpoints []Endpoint
}

// GroupByTag buckets endpoints by tag, ordered by first occurrence. An
// endpoint with no tags is filed under UntaggedGroup; an endpoint with N
// tags appears in all N groups.
func GroupByTag(endpoints []Endpoint) []TagGroup {
	index := make(map[string]int)
	var groups []TagGroup
	add := func(tag string, ep Endpoint) {
		i, ok := index[tag]
		if !ok {
			i = len(groups)
			index[tag] = i
			groups = append(groups, TagGroup{Tag: tag})
		}
		groups[i].Endpoints = append(groups[i].Endpoints, ep)
	}
	for _, ep := range endpoints {
		if len(ep.Tags) == 0 {
			add(UntaggedGroup, ep)
			continue
		}
		for _, t := range ep.Tags {
			add(t, ep)
		}
	}
	return groups
}

// Find returns the endpoint matching method and path, if any.
func Find(endpoints []Endpoint, method, path string) (Endpoint, bool) {
	method = strings.ToUpper(strings.TrimSpace(method))
	for _, ep := range endpoints {
		if ep.Method == method && ep.Path == path {
			return ep, true
		}
	}
	return Endpoint{}, false
}
