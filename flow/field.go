package flow

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldSpec declares one field of a step schema and its constraints.
type FieldSpec struct {
	Key      string
	Label    string
	Required bool
	// Pattern is a regular expression the full string value must match.
	Pattern string
	// Min and Max bound numeric values, or the length of string values.
	Min *float64
	Max *float64
	// Enum restricts the value (or every element of a list value) to a
	// fixed set.
	Enum []string
	// Safety marks a red-flag question: an affirmative answer puts the
	// whole flow into the safety-blocked state.
	Safety bool
}

// Validate checks a single value against the spec and returns an error
// message, or "" when the value is acceptable.
func (f FieldSpec) Validate(value interface{}) string {
	if isEmpty(value) {
		if f.Required {
			return "is required"
		}
		return ""
	}

	if f.Pattern != "" {
		if s, ok := value.(string); ok {
			matched, err := regexp.MatchString("^(?:"+f.Pattern+")$", s)
			if err != nil || !matched {
				return "has an invalid format"
			}
		}
	}

	if f.Min != nil || f.Max != nil {
		if msg := f.validateBounds(value); msg != "" {
			return msg
		}
	}

	if len(f.Enum) > 0 {
		if msg := f.validateEnum(value); msg != "" {
			return msg
		}
	}

	return ""
}

func (f FieldSpec) validateBounds(value interface{}) string {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		n = float64(len(strings.TrimSpace(v)))
	default:
		return ""
	}

	if f.Min != nil && n < *f.Min {
		if _, isString := value.(string); isString {
			return fmt.Sprintf("must be at least %d characters", int(*f.Min))
		}
		return fmt.Sprintf("must be at least %v", *f.Min)
	}
	if f.Max != nil && n > *f.Max {
		if _, isString := value.(string); isString {
			return fmt.Sprintf("must be at most %d characters", int(*f.Max))
		}
		return fmt.Sprintf("must be at most %v", *f.Max)
	}
	return ""
}

func (f FieldSpec) validateEnum(value interface{}) string {
	allowed := make(map[string]struct{}, len(f.Enum))
	for _, v := range f.Enum {
		allowed[v] = struct{}{}
	}

	check := func(s string) bool {
		_, ok := allowed[s]
		return ok
	}

	switch v := value.(type) {
	case string:
		if !check(v) {
			return "is not one of the allowed values"
		}
	case []string:
		for _, item := range v {
			if !check(item) {
				return "contains a value that is not allowed"
			}
		}
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok || !check(s) {
				return "contains a value that is not allowed"
			}
		}
	default:
		return "is not one of the allowed values"
	}
	return ""
}

// ValidateStep runs every field of the step's schema against the answers
// and returns field-keyed messages. An empty map means the step is valid.
func ValidateStep(step Step, answers map[string]interface{}) map[string]string {
	errors := make(map[string]string)
	for _, field := range step.Fields {
		if msg := field.Validate(answers[field.Key]); msg != "" {
			errors[field.Key] = msg
		}
	}
	return errors
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// IsAffirmative interprets the ways a yes answer arrives from a form: a
// real boolean or a yes/true string.
func IsAffirmative(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "yes" || s == "true"
	default:
		return false
	}
}
