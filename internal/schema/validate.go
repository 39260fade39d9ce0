package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var formats = validator.New()

// Format checks, expressed as validator tags.
const (
	emailTag    = "email"
	uriTag      = "uri"
	dateTimeTag = "datetime=2006-01-02T15:04:05|datetime=2006-01-02T15:04:05Z07:00"
)

// ValidateProperty checks value against prop. The value is the raw request
// input; name is used in error messages. It returns nil or a *ValidationError.
func ValidateProperty(value any, name string, prop *Property) error {
	if value == nil {
		if prop.Default == nil {
			if prop.Required {
				return invalid(CodeInvalidParam, name, "%s is required.", name)
			}
			return nil
		}
		value = prop.Default
	}

	if len(prop.Enum) > 0 && prop.Type != TypeArray {
		s, ok := scalarString(value)
		if !ok || !inEnum(s, prop.Enum) {
			return invalid(CodeInvalidParam, name, "%s is not one of %s.", name, strings.Join(prop.Enum, ", "))
		}
	}

	switch prop.Type {
	case TypeInteger:
		n, ok := toInteger(value)
		if !ok {
			return invalid(CodeInvalidParam, name, "%s is not of type integer.", name)
		}
		if prop.Minimum != nil && n < *prop.Minimum {
			return invalid(CodeInvalidParam, name, "%s must be greater than or equal to %d.", name, *prop.Minimum)
		}
		if prop.Maximum != nil && n > *prop.Maximum {
			return invalid(CodeInvalidParam, name, "%s must be less than or equal to %d.", name, *prop.Maximum)
		}
	case TypeBoolean:
		if _, ok := toBool(value); !ok {
			return invalid(CodeInvalidParam, name, "%s is not of type boolean.", name)
		}
	case TypeString:
		if _, ok := scalarString(value); !ok {
			return invalid(CodeInvalidParam, name, "%s is not of type string.", name)
		}
	case TypeObject:
		obj, ok := toObject(value)
		if !ok {
			return invalid(CodeInvalidParam, name, "%s is not of type object.", name)
		}
		for _, key := range sortedKeys(prop.Properties) {
			if v, present := obj[key]; present {
				if err := ValidateProperty(v, name+"["+key+"]", prop.Properties[key]); err != nil {
					return err
				}
			}
		}
	case TypeArray:
		list, ok := toList(value)
		if !ok {
			return invalid(CodeInvalidParam, name, "%s is not of type array.", name)
		}
		if prop.Items != nil {
			for i, item := range list {
				if err := ValidateProperty(item, name+"["+strconv.Itoa(i)+"]", prop.Items); err != nil {
					return err
				}
			}
		}
	}

	if prop.Format == "" {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	switch prop.Format {
	case FormatEmail:
		if formats.Var(s, emailTag) != nil {
			return invalid(CodeInvalidEmail, name, "Invalid email address.")
		}
	case FormatDateTime:
		if formats.Var(s, dateTimeTag) != nil {
			return invalid(CodeInvalidDate, name, "Invalid date.")
		}
	case FormatURI:
		if formats.Var(s, uriTag) != nil {
			return invalid(CodeInvalidParam, name, "%s is not a valid URI.", name)
		}
	}
	return nil
}

func inEnum(s string, enum []string) bool {
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}

// scalarString renders a scalar as a string; arrays and objects are rejected.
func scalarString(value any) (string, bool) {
	switch value.(type) {
	case []any, []string, map[string]any:
		return "", false
	}
	s, err := cast.ToStringE(value)
	return s, err == nil
}

// toInteger accepts integral numbers and strings holding them.
func toInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) ||
			v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		return toInteger(v.String())
	case string:
		s := strings.TrimSpace(v)
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, true
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return toInteger(f)
	default:
		return 0, false
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	case int, int64, float64:
		n, ok := toInteger(v)
		if ok && (n == 0 || n == 1) {
			return n == 1, true
		}
		return false, false
	default:
		return false, false
	}
}

// toObject accepts a JSON object; an empty string stands for an empty object.
func toObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case string:
		if v == "" {
			return map[string]any{}, true
		}
	}
	return nil, false
}

// toList accepts a JSON array or a comma/space separated string.
func toList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case string:
		parts := strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		out := make([]any, len(parts))
		for i, s := range parts {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func sortedKeys(props map[string]*Property) []string {
	return (&Schema{Properties: props}).Names()
}
