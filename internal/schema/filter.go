package schema

// FilterByContext returns a copy of data without the schema properties that are
// not exposed in ctx. Keys the schema does not describe, such as _links, are kept.
func FilterByContext(data map[string]any, s *Schema, ctx Context) map[string]any {
	return filterProps(data, s.Properties, ctx)
}

func filterProps(data map[string]any, props map[string]*Property, ctx Context) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		prop, described := props[key]
		if !described {
			out[key] = value
			continue
		}
		if len(prop.Context) > 0 && !prop.InContext(ctx) {
			continue
		}
		if nested, ok := value.(map[string]any); ok && len(prop.Properties) > 0 {
			value = filterProps(nested, prop.Properties, ctx)
		}
		out[key] = value
	}
	return out
}
