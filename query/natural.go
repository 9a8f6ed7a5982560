package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/stevemurr/string-analysis-server/errors"
)

var (
	firstInteger = regexp.MustCompile(`\d+`)
	firstLetter  = regexp.MustCompile(`[A-Za-z]`)
)

// Rule turns free text into Criteria. It fires when the text contains every
// keyword (case-insensitively) and Build accepts the text.
type Rule struct {
	Name     string
	Keywords []string
	// Build receives the original text. Returning false lets later rules try.
	Build func(text string) (Criteria, bool)
}

// DefaultRules is the rule table in priority order.
var DefaultRules = []Rule{
	{
		Name:     "single-word-palindrome",
		Keywords: []string{"single word", "palindromic"},
		Build: func(string) (Criteria, bool) {
			return Criteria{WordCount: Int(1), IsPalindrome: Bool(true)}, true
		},
	},
	{
		Name:     "longer-than",
		Keywords: []string{"longer than", "characters"},
		Build: func(text string) (Criteria, bool) {
			n, err := strconv.Atoi(firstInteger.FindString(text))
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return Criteria{}, false
			}
			// Atoi saturates out-of-range numbers at MaxInt, and no string
			// reaches that length, so the bound stays there instead of wrapping.
			if n < math.MaxInt {
				n++
			}
			return Criteria{MinLength: Int(n)}, true
		},
	},
	{
		// Only the vowel "a" is checked.
		Name:     "palindrome-with-vowel",
		Keywords: []string{"palindromic", "vowel"},
		Build: func(string) (Criteria, bool) {
			return Criteria{IsPalindrome: Bool(true), ContainsCharacter: String("a")}, true
		},
	},
	{
		// Uses the first letter anywhere in the text, not the one after "letter".
		Name:     "containing-letter",
		Keywords: []string{"containing", "letter"},
		Build: func(text string) (Criteria, bool) {
			letter := firstLetter.FindString(text)
			if letter == "" {
				return Criteria{}, false
			}
			return Criteria{ContainsCharacter: String(letter)}, true
		},
	},
}

// Interpretation is the outcome of translating a free-text query.
type Interpretation struct {
	Original      string   `json:"original"`
	ParsedFilters Criteria `json:"parsed_filters"`
	Rule          string   `json:"-"`
}

// Interpreter evaluates rules in order and stops at the first one that fires.
type Interpreter struct {
	rules []Rule
}

// NewInterpreter returns an Interpreter over rules, or over DefaultRules when
// none are given.
func NewInterpreter(rules ...Rule) *Interpreter {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	folded := make([]Rule, len(rules))
	for i, r := range rules {
		folded[i] = r
		folded[i].Keywords = make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			folded[i].Keywords[j] = fold(k)
		}
	}
	return &Interpreter{rules: folded}
}

// Interpret translates text into Criteria. Blank text is ErrMissingQuery and
// text no rule understands is ErrUnparsableQuery.
func (in *Interpreter) Interpret(text string) (Interpretation, error) {
	if strings.TrimSpace(text) == "" {
		return Interpretation{}, errors.ErrMissingQuery
	}
	haystack := fold(text)
	for _, r := range in.rules {
		if !containsAll(haystack, r.Keywords) {
			continue
		}
		c, ok := r.Build(text)
		if !ok || c.Empty() {
			continue
		}
		return Interpretation{Original: text, ParsedFilters: c, Rule: r.Name}, nil
	}
	return Interpretation{}, errors.Wrapf(errors.ErrUnparsableQuery, "query %q", text)
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

func fold(s string) string {
	return cases.Fold().String(s)
}
