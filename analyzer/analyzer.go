// Package analyzer derives the textual properties of a string value.
//
// Everything here is pure: the same input always yields the same
// Properties and digest, and all functions are safe for concurrent use.
package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stevemurr/string-analysis-server/errors"
)

// Properties is the immutable snapshot computed for a value at creation time.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Clone returns a copy of p that shares no state with it.
func (p Properties) Clone() Properties {
	out := p
	out.CharacterFrequencyMap = make(map[string]int, len(p.CharacterFrequencyMap))
	for k, v := range p.CharacterFrequencyMap {
		out.CharacterFrequencyMap[k] = v
	}
	return out
}

// Analyze computes the properties of value. Characters are Unicode code
// points; value is used exactly as given, with no normalization.
func Analyze(value string) Properties {
	freq := Frequencies(value)
	return Properties{
		Length:                utf8.RuneCountInString(value),
		IsPalindrome:          IsPalindrome(value),
		UniqueCharacters:      len(freq),
		WordCount:             WordCount(value),
		SHA256Hash:            Digest(value),
		CharacterFrequencyMap: freq,
	}
}

// Digest returns the lowercase hex SHA-256 of the UTF-8 bytes of value.
// It doubles as the record identity.
func Digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// IsPalindrome lower-cases value and compares it with its reversal.
// Whitespace and punctuation take part in the comparison, so "level " is not
// a palindrome while "Level" is.
func IsPalindrome(value string) bool {
	// Caser values are stateful; build one per call.
	lower := []rune(cases.Lower(language.Und).String(value))
	reversed := slices.Clone(lower)
	slices.Reverse(reversed)
	return slices.Equal(lower, reversed)
}

// WordCount counts whitespace-delimited tokens. Empty and whitespace-only
// values have zero words.
func WordCount(value string) int {
	return len(strings.Fields(value))
}

// Frequencies maps every character of value to its occurrence count.
// Counting is case-sensitive and includes whitespace.
func Frequencies(value string) map[string]int {
	freq := make(map[string]int)
	for _, r := range value {
		freq[string(r)]++
	}
	return freq
}

// Coerce enforces the input contract for values arriving untyped, such as
// decoded JSON. nil is ErrMissingValue; any other non-string is
// ErrInvalidInput.
func Coerce(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", errors.ErrMissingValue
	case string:
		return s, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidInput, "value must be a string, got %T", v)
	}
}
