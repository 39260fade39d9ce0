package schema

import (
	"strings"

	"github.com/spf13/cast"
)

// SanitizeProperty coerces an already validated value to the property's type.
// Integers become int64, booleans bool, strings string, arrays []any and
// objects map[string]any. A nil value yields the property default.
func SanitizeProperty(value any, name string, prop *Property) (any, error) {
	if value == nil {
		return prop.Default, nil
	}

	switch prop.Type {
	case TypeInteger:
		n, ok := toInteger(value)
		if !ok {
			return nil, invalid(CodeInvalidParam, name, "%s is not of type integer.", name)
		}
		return n, nil
	case TypeBoolean:
		b, ok := toBool(value)
		if !ok {
			return cast.ToBoolE(value)
		}
		return b, nil
	case TypeString:
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, invalid(CodeInvalidParam, name, "%s is not of type string.", name)
		}
		if prop.Format == FormatEmail || prop.Format == FormatURI {
			s = strings.TrimSpace(s)
		}
		return s, nil
	case TypeArray:
		list, ok := toList(value)
		if !ok {
			return nil, invalid(CodeInvalidParam, name, "%s is not of type array.", name)
		}
		if prop.Items == nil {
			return list, nil
		}
		out := make([]any, len(list))
		for i, item := range list {
			v, err := SanitizeProperty(item, name, prop.Items)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case TypeObject:
		obj, ok := toObject(value)
		if !ok {
			return nil, invalid(CodeInvalidParam, name, "%s is not of type object.", name)
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			if sub, known := prop.Properties[k]; known {
				clean, err := SanitizeProperty(v, name+"["+k+"]", sub)
				if err != nil {
					return nil, err
				}
				out[k] = clean
				continue
			}
			out[k] = v
		}
		return out, nil
	default:
		return value, nil
	}
}
