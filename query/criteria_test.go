package query_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/string-analysis-server/analyzer"
	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/query"
)

func match(c query.Criteria, value string) bool {
	return c.Match(value, analyzer.Analyze(value))
}

func TestEmptyCriteriaMatchesEverything(t *testing.T) {
	var c query.Criteria
	assert.True(t, c.Empty())
	assert.True(t, match(c, ""))
	assert.True(t, match(c, "anything at all"))
}

func TestMatchEachFilter(t *testing.T) {
	tests := []struct {
		name  string
		c     query.Criteria
		value string
		want  bool
	}{
		{"palindrome true", query.Criteria{IsPalindrome: query.Bool(true)}, "radar", true},
		{"palindrome true rejects", query.Criteria{IsPalindrome: query.Bool(true)}, "hello", false},
		{"palindrome false", query.Criteria{IsPalindrome: query.Bool(false)}, "hello", true},
		{"min length inclusive", query.Criteria{MinLength: query.Int(5)}, "radar", true},
		{"min length rejects", query.Criteria{MinLength: query.Int(6)}, "radar", false},
		{"max length inclusive", query.Criteria{MaxLength: query.Int(5)}, "radar", true},
		{"max length rejects", query.Criteria{MaxLength: query.Int(4)}, "radar", false},
		{"word count", query.Criteria{WordCount: query.Int(2)}, "hello world", true},
		{"word count rejects", query.Criteria{WordCount: query.Int(1)}, "hello world", false},
		{"substring", query.Criteria{ContainsCharacter: query.String("lo w")}, "hello world", true},
		{"substring case sensitive", query.Criteria{ContainsCharacter: query.String("H")}, "hello", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, match(tc.c, tc.value))
		})
	}
}

func TestMatchIsConjunction(t *testing.T) {
	c := query.Criteria{
		MinLength: query.Int(5),
		MaxLength: query.Int(5),
		WordCount: query.Int(1),
	}
	assert.True(t, match(c, "radar"))
	assert.False(t, match(c, "racecar"))
	assert.False(t, match(c, "a b c"))
}

func TestParseParams(t *testing.T) {
	params := url.Values{
		"is_palindrome":      {"true"},
		"min_length":         {"5"},
		"max_length":         {"20"},
		"word_count":         {"2"},
		"contains_character": {"a"},
	}
	c, err := query.ParseParams(params)
	require.NoError(t, err)

	require.NotNil(t, c.IsPalindrome)
	assert.True(t, *c.IsPalindrome)
	assert.Equal(t, 5, *c.MinLength)
	assert.Equal(t, 20, *c.MaxLength)
	assert.Equal(t, 2, *c.WordCount)
	assert.Equal(t, "a", *c.ContainsCharacter)
}

func TestParseParamsIgnoresEmptyAndUnknown(t *testing.T) {
	c, err := query.ParseParams(url.Values{
		"min_length": {""},
		"color":      {"purple"},
	})
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestParseParamsBooleanSpellings(t *testing.T) {
	for raw, want := range map[string]bool{
		"true": true, "TRUE": true, "1": true, "t": true,
		"false": false, "False": false, "0": false, "f": false,
	} {
		c, err := query.ParseParams(url.Values{"is_palindrome": {raw}})
		require.NoError(t, err, raw)
		require.NotNil(t, c.IsPalindrome, raw)
		assert.Equal(t, want, *c.IsPalindrome, raw)
	}
}

func TestParseParamsRejectsMalformed(t *testing.T) {
	for _, params := range []url.Values{
		{"is_palindrome": {"maybe"}},
		{"min_length": {"five"}},
		{"max_length": {"1.5"}},
		{"word_count": {"x"}},
	} {
		_, err := query.ParseParams(params)
		require.Error(t, err, "%v", params)
		assert.True(t, errors.IsInvalidInput(err))
	}
}

func TestCriteriaJSONOmitsUnset(t *testing.T) {
	b, err := json.Marshal(query.Criteria{WordCount: query.Int(1), IsPalindrome: query.Bool(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"word_count":1,"is_palindrome":true}`, string(b))

	b, err = json.Marshal(query.Criteria{IsPalindrome: query.Bool(false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_palindrome":false}`, string(b))
}
