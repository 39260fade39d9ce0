package schema

import "sort"

// Context is the visibility scope a property is exposed in.
type Context string

// Contexts.
const (
	ContextView  Context = "view"
	ContextEdit  Context = "edit"
	ContextEmbed Context = "embed"
)

// ParseContext maps a request "context" parameter to a Context, defaulting to view.
func ParseContext(s string) Context {
	switch Context(s) {
	case ContextEdit, ContextEmbed:
		return Context(s)
	default:
		return ContextView
	}
}

// Property types.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Property formats.
const (
	FormatURI      = "uri"
	FormatDateTime = "date-time"
	FormatEmail    = "email"
)

// Shorthand context sets used by resource schemas.
var (
	All      = []Context{ContextView, ContextEdit, ContextEmbed}
	ViewEdit = []Context{ContextView, ContextEdit}
	EditOnly = []Context{ContextEdit}
)

// Property describes one field of a resource.
type Property struct {
	Description string
	Type        string
	Format      string
	Enum        []string
	Context     []Context
	Default     any
	Required    bool
	Readonly    bool
	Minimum     *int64
	Maximum     *int64
	// Items describes array elements.
	Items *Property
	// Properties describes the fields of an object value.
	Properties map[string]*Property
}

// InContext reports whether the property is exposed in ctx.
func (p *Property) InContext(ctx Context) bool {
	for _, c := range p.Context {
		if c == ctx {
			return true
		}
	}
	return false
}

// Schema describes a resource: its title and its properties by name.
type Schema struct {
	Title      string
	Type       string
	Properties map[string]*Property
}

// New returns an object schema with the given title and properties.
func New(title string, props map[string]*Property) *Schema {
	return &Schema{Title: title, Type: TypeObject, Properties: props}
}

// Names returns the property names in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Int64 returns a pointer to v, for Minimum and Maximum.
func Int64(v int64) *int64 {
	return &v
}
