package glvrd

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Score is a readability score in [0, 10] with at most one decimal
type Score float64

// String renders whole scores without a decimal part: 8, 8.4, 0.3
func (s Score) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// wordPattern matches a word together with the separator run that follows
// it. Each match counts as one unit of text length.
var wordPattern = regexp.MustCompile(`[А-Яа-яA-Za-z0-9-]+(?:[^А-Яа-яA-Za-z0-9-]+)?`)

// ComputeScore derives the score of one or more proofreading results.
// It makes no network calls and treats results as read-only.
func ComputeScore(results ...*ProofreadResult) Score {
	var letters, fragments int
	var penalty float64

	for _, result := range results {
		if result == nil {
			continue
		}
		letters += countLetters(result.Text)
		fragments += len(result.Fragments)
		for _, fragment := range result.Fragments {
			if fragment != nil && fragment.Hint != nil {
				penalty += fragment.Hint.Penalty
			}
		}
	}

	if letters == 0 {
		return 0
	}

	raw := math.Floor(100*math.Pow(1-float64(fragments)/float64(letters), 3)) - penalty
	raw = math.Min(math.Max(raw, 0), 100)

	if math.Mod(raw, 10) == 0 {
		return Score(raw / 10)
	}
	return Score(toFixed1(raw / 10))
}

// toFixed1 rounds x to one decimal from its exact binary value, so 8.45
// (stored as 8.4499...) gives 8.4. Exact ties such as 8.25 round up.
func toFixed1(x float64) float64 {
	if math.Mod(x*4, 2) == 1 {
		return math.Ceil(x*10) / 10
	}
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}

// countLetters collapses every word and its trailing separators into a
// single character and returns the resulting length in UTF-16 code units.
func countLetters(text string) int {
	text = strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	if text == "" {
		return 0
	}
	collapsed := wordPattern.ReplaceAllLiteralString(text, ".")
	return len(utf16.Encode([]rune(collapsed)))
}
