package grading

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// Match is the outcome of comparing a text answer against a model answer.
// Score is matchedKeywords/totalModelKeywords in [0,1]; a full regex match
// forces it to 1.0.
type Match struct {
	Score         float64 `json:"score"`
	MatchedCount  int     `json:"matched_count"`
	TotalKeywords int     `json:"total_keywords"`
	PatternMatch  bool    `json:"pattern_match"`
}

// Similarity computes the keyword-overlap similarity between a free-text
// answer and the question's model answer. Tokens are case-folded unless the
// model answer is case-sensitive; punctuation is stripped. Model keywords are
// deduplicated so a repeated word counts once.
func Similarity(ma model.ModelAnswer, answerText string) Match {
	if ma.Pattern != "" {
		// Anchored so the whole answer must match; a pattern hit inside a
		// longer answer falls through to keyword overlap.
		if re, err := regexp.Compile(`^(?:` + ma.Pattern + `)$`); err == nil && re.MatchString(answerText) {
			return Match{Score: 1.0, PatternMatch: true}
		}
	}

	keywords := tokenize(ma.AnswerText, ma.CaseSensitive)
	if len(keywords) == 0 {
		return Match{}
	}

	answerSet := make(map[string]bool)
	for _, tok := range tokenize(answerText, ma.CaseSensitive) {
		answerSet[tok] = true
	}

	matched := 0
	for _, kw := range keywords {
		if answerSet[kw] {
			matched++
		}
	}

	return Match{
		Score:         float64(matched) / float64(len(keywords)),
		MatchedCount:  matched,
		TotalKeywords: len(keywords),
	}
}

// SuggestedMarks converts a similarity score into advisory marks.
func SuggestedMarks(similarity, questionMarks float64) float64 {
	return math.Round(similarity * questionMarks)
}

// tokenize splits a string into deduplicated word tokens, stripping
// punctuation and optionally case-folding.
func tokenize(s string, caseSensitive bool) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if caseSensitive {
				return r
			}
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, s)

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
