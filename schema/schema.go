// Package schema provides JSON Schema validation for request bodies.
package schema

import (
	"fmt"
	"unicode/utf8"
)

// Keywords reported in Violation.Keyword.
const (
	KeywordType      = "type"
	KeywordRequired  = "required"
	KeywordMinLength = "minLength"
	KeywordMaxLength = "maxLength"
)

// Violation describes the first schema rule a document broke.
type Violation struct {
	Path    string // e.g. "$.value"
	Keyword string // one of the Keyword constants
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// CreateString is the schema for the body of POST /strings.
var CreateString = map[string]any{
	"type":     "object",
	"required": []any{"value"},
	"properties": map[string]any{
		"value": map[string]any{"type": "string", "minLength": 1},
	},
}

// Validate checks a decoded JSON document against a small JSON Schema
// subset. Returns nil if validation passes or the schema is nil, otherwise a
// *Violation.
//
// Supported keywords:
//   - type (string, number, boolean, object, array, null)
//   - properties, required
//   - minLength, maxLength (counted in characters)
//
// A required property that is present but null counts as missing.
func Validate(schema map[string]any, doc map[string]any) error {
	if schema == nil {
		return nil
	}
	if v := validateValue(schema, doc, "$"); v != nil {
		return v
	}
	return nil
}

func violation(path, keyword, format string, args ...any) *Violation {
	return &Violation{Path: path, Keyword: keyword, Message: fmt.Sprintf(format, args...)}
}

func validateValue(schema map[string]any, value any, path string) *Violation {
	if expected, ok := schema["type"].(string); ok {
		if actual := jsonType(value); actual != expected {
			return violation(path, KeywordType, "expected type %q, got %q", expected, actual)
		}
	}

	switch v := value.(type) {
	case map[string]any:
		return validateObject(schema, v, path)
	case string:
		return validateString(schema, v, path)
	}
	return nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func validateObject(schema map[string]any, obj map[string]any, path string) *Violation {
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			field, ok := r.(string)
			if !ok {
				continue
			}
			if val, exists := obj[field]; !exists || val == nil {
				return violation(path+"."+field, KeywordRequired, "missing required field %q", field)
			}
		}
	}

	propsMap, _ := schema["properties"].(map[string]any)
	for field, propSchema := range propsMap {
		val, exists := obj[field]
		if !exists {
			continue
		}
		ps, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}
		if v := validateValue(ps, val, path+"."+field); v != nil {
			return v
		}
	}
	return nil
}

func validateString(schema map[string]any, s string, path string) *Violation {
	n := utf8.RuneCountInString(s)
	if limit, ok := schema["minLength"].(int); ok && n < limit {
		return violation(path, KeywordMinLength, "string length %d is less than minLength %d", n, limit)
	}
	if limit, ok := schema["maxLength"].(int); ok && n > limit {
		return violation(path, KeywordMaxLength, "string length %d is greater than maxLength %d", n, limit)
	}
	return nil
}
