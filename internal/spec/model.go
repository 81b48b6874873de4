package spec

// Passive document model. A Document is built once per load and is fully
// dereferenced: no $ref indirections survive, every schema is inlined.
// Instances are treated as immutable after construction.

type Document struct {
	// OpenAPI holds the version marker ("3.0.3", or the converted value for
	// Swagger 2.0 inputs).
	OpenAPI string
	Info    Info
	Servers []Server
	Paths   map[string]*PathItem
}

type Info struct {
	Title       string
	Version     string
	Description string
}

type Server struct {
	URL         string
	Description string
}

// PathItem maps the seven modeled HTTP methods to operations. Absent
// methods are nil.
type PathItem struct {
	Get     *Operation
	Post    *Operation
	Put     *Operation
	Patch   *Operation
	Delete  *Operation
	Options *Operation
	Head    *Operation
}

// SecurityRequirement names a security scheme and its scopes. The tool only
// cares whether an operation declares any requirement at all.
type SecurityRequirement map[string][]string

type Operation struct {
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Security    []SecurityRequirement
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      *Schema
}

type RequestBody struct {
	Required bool
	// Content lists the MIME-keyed body variants sorted by MIME type, so
	// "first declared" is deterministic.
	Content []MediaType
}

type MediaType struct {
	MIME    string
	Schema  *Schema
	Example any
}

// Schema is a recursive, fully inlined schema node. An empty Type means
// untyped/object-like.
type Schema struct {
	Type        string
	Format      string
	Description string
	Items       *Schema
	Properties  map[string]*Schema
	Required    []string
	Enum        []any
	Default     any
	Example     any
}
