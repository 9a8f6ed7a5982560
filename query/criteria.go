// Package query describes filters over stored strings: the structured
// Criteria, parsing them from URL parameters, and translating free-text
// queries into Criteria through an ordered rule table.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/stevemurr/string-analysis-server/analyzer"
	"github.com/stevemurr/string-analysis-server/errors"
)

// Parameter names accepted by ParseParams. They double as the JSON field
// names of Criteria.
const (
	ParamIsPalindrome      = "is_palindrome"
	ParamMinLength         = "min_length"
	ParamMaxLength         = "max_length"
	ParamWordCount         = "word_count"
	ParamContainsCharacter = "contains_character"
)

// Criteria is a set of independently optional filters combined with AND.
// A nil field is not applied.
type Criteria struct {
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// Empty reports whether no filter is set.
func (c Criteria) Empty() bool {
	return c.IsPalindrome == nil &&
		c.MinLength == nil &&
		c.MaxLength == nil &&
		c.WordCount == nil &&
		c.ContainsCharacter == nil
}

// Match reports whether a value with properties p passes every set filter.
// ContainsCharacter is a substring test on the raw value.
func (c Criteria) Match(value string, p analyzer.Properties) bool {
	if c.IsPalindrome != nil && p.IsPalindrome != *c.IsPalindrome {
		return false
	}
	if c.MinLength != nil && p.Length < *c.MinLength {
		return false
	}
	if c.MaxLength != nil && p.Length > *c.MaxLength {
		return false
	}
	if c.WordCount != nil && p.WordCount != *c.WordCount {
		return false
	}
	if c.ContainsCharacter != nil && !strings.Contains(value, *c.ContainsCharacter) {
		return false
	}
	return true
}

// ParseParams builds Criteria from URL query parameters. Empty parameters
// count as absent and unknown parameters are ignored. Malformed booleans or
// integers are ErrInvalidInput.
func ParseParams(params url.Values) (Criteria, error) {
	var c Criteria

	if raw := params.Get(ParamIsPalindrome); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Criteria{}, errors.NewInvalidInputError("%s must be true or false, got %q", ParamIsPalindrome, raw)
		}
		c.IsPalindrome = &b
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{ParamMinLength, &c.MinLength},
		{ParamMaxLength, &c.MaxLength},
		{ParamWordCount, &c.WordCount},
	}
	for _, p := range ints {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Criteria{}, errors.NewInvalidInputError("%s must be an integer, got %q", p.name, raw)
		}
		*p.dst = &n
	}

	if raw := params.Get(ParamContainsCharacter); raw != "" {
		c.ContainsCharacter = &raw
	}

	return c, nil
}

// Bool returns a pointer to b, for building Criteria literals.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// String returns a pointer to s.
func String(s string) *string { return &s }
