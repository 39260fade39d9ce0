package schema

// ValidateFunc checks a raw parameter value and returns nil or an error.
type ValidateFunc func(value any, name string) error

// SanitizeFunc converts a validated parameter value to its final form.
type SanitizeFunc func(value any, name string) (any, error)

// ArgSpec declares one endpoint argument.
type ArgSpec struct {
	Required    bool
	Default     any
	Description string
	Type        string
	Format      string
	Enum        []string
	Validate    ValidateFunc
	Sanitize    SanitizeFunc
}

// Arg builds an argument spec whose callbacks validate and sanitize against prop.
func Arg(prop *Property) ArgSpec {
	return ArgSpec{
		Required:    prop.Required,
		Default:     prop.Default,
		Description: prop.Description,
		Type:        prop.Type,
		Format:      prop.Format,
		Enum:        prop.Enum,
		Validate: func(value any, name string) error {
			return ValidateProperty(value, name, prop)
		},
		Sanitize: func(value any, name string) (any, error) {
			return SanitizeProperty(value, name, prop)
		},
	}
}

// EndpointArgs derives the argument specs for a write endpoint from s. Only
// writable properties exposed in ctx (edit when empty) are included.
func EndpointArgs(s *Schema, ctx Context) map[string]ArgSpec {
	if ctx == "" {
		ctx = ContextEdit
	}
	args := make(map[string]ArgSpec, len(s.Properties))
	for name, prop := range s.Properties {
		if prop.Readonly || !prop.InContext(ctx) {
			continue
		}
		args[name] = Arg(prop)
	}
	return args
}

// UpdateArgs is EndpointArgs for partial updates: nothing is required and no
// defaults are applied, so absent fields keep their stored values.
func UpdateArgs(s *Schema) map[string]ArgSpec {
	args := EndpointArgs(s, ContextEdit)
	for name, spec := range args {
		spec.Required = false
		spec.Default = nil
		args[name] = spec
	}
	return args
}

// ContextArg is the standard "context" query argument.
func ContextArg(def Context) ArgSpec {
	return Arg(&Property{
		Description: "Scope under which the request is made; determines fields present in response.",
		Type:        TypeString,
		Enum:        []string{string(ContextView), string(ContextEmbed), string(ContextEdit)},
		Default:     string(def),
	})
}

// Merge returns a new map holding every spec of the given maps; later maps win.
func Merge(maps ...map[string]ArgSpec) map[string]ArgSpec {
	out := make(map[string]ArgSpec)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
