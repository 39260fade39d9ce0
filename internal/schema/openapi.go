package schema

import (
	"encoding/json"

	"github.com/go-openapi/spec"
)

// DraftURL is the JSON Schema dialect resource schemas are published in.
const DraftURL = "http://json-schema.org/draft-04/schema#"

// JSONSchema renders the schema as a draft-04 JSON Schema document. The
// per-property context, readonly and required flags are carried as extra keys.
func (s *Schema) JSONSchema() *spec.Schema {
	out := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Schema:     spec.SchemaURL(DraftURL),
			Title:      s.Title,
			Type:       spec.StringOrArray{TypeObject},
			Properties: make(spec.SchemaProperties, len(s.Properties)),
		},
	}
	for name, prop := range s.Properties {
		out.Properties[name] = prop.jsonSchema()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}

func (p *Property) jsonSchema() spec.Schema {
	out := spec.Schema{
		SchemaProps: spec.SchemaProps{
			Description: p.Description,
			Format:      p.Format,
			Default:     p.Default,
		},
	}
	if p.Type != "" {
		out.Type = spec.StringOrArray{p.Type}
	}
	for _, e := range p.Enum {
		out.Enum = append(out.Enum, e)
	}
	if p.Minimum != nil {
		v := float64(*p.Minimum)
		out.Minimum = &v
	}
	if p.Maximum != nil {
		v := float64(*p.Maximum)
		out.Maximum = &v
	}
	if p.Items != nil {
		items := p.Items.jsonSchema()
		out.Items = &spec.SchemaOrArray{Schema: &items}
	}
	if len(p.Properties) > 0 {
		out.Properties = make(spec.SchemaProperties, len(p.Properties))
		for name, sub := range p.Properties {
			out.Properties[name] = sub.jsonSchema()
		}
	}

	extra := map[string]any{}
	if len(p.Context) > 0 {
		ctx := make([]string, len(p.Context))
		for i, c := range p.Context {
			ctx[i] = string(c)
		}
		extra["context"] = ctx
	}
	if p.Readonly {
		extra["readonly"] = true
	}
	if p.Required {
		extra["required"] = true
	}
	if len(extra) > 0 {
		out.ExtraProps = extra
	}
	return out
}

// ArgsJSON describes argument specs for OPTIONS responses and the route index.
func ArgsJSON(args map[string]ArgSpec) map[string]any {
	out := make(map[string]any, len(args))
	for name, a := range args {
		desc := map[string]any{"required": a.Required}
		if a.Description != "" {
			desc["description"] = a.Description
		}
		if a.Type != "" {
			desc["type"] = a.Type
		}
		if a.Format != "" {
			desc["format"] = a.Format
		}
		if len(a.Enum) > 0 {
			desc["enum"] = a.Enum
		}
		if a.Default != nil {
			desc["default"] = a.Default
		}
		out[name] = desc
	}
	return out
}
