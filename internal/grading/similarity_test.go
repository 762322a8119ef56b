package grading

import (
	"testing"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

func TestSimilarityKeywordOverlap(t *testing.T) {
	ma := model.ModelAnswer{
		AnswerText: "The mitochondria is the powerhouse of the cell, producing ATP through cellular respiration",
	}
	// Tokenized and deduplicated model keywords:
	// the, mitochondria, is, powerhouse, of, cell, producing, atp, through, cellular, respiration
	m := Similarity(ma, "It makes ATP for the cell using respiration")
	// Matched: the, cell, atp, respiration
	if m.TotalKeywords != 11 {
		t.Errorf("TotalKeywords = %d, want 11", m.TotalKeywords)
	}
	if m.MatchedCount != 4 {
		t.Errorf("MatchedCount = %d, want 4", m.MatchedCount)
	}
	want := 4.0 / 11.0
	if m.Score != want {
		t.Errorf("Score = %f, want %f", m.Score, want)
	}
	if m.PatternMatch {
		t.Error("PatternMatch should be false without a pattern")
	}
}

func TestSimilarityCaseFolding(t *testing.T) {
	ma := model.ModelAnswer{AnswerText: "Photosynthesis Chlorophyll"}
	m := Similarity(ma, "photosynthesis uses CHLOROPHYLL")
	if m.MatchedCount != 2 {
		t.Errorf("case-insensitive MatchedCount = %d, want 2", m.MatchedCount)
	}

	ma.CaseSensitive = true
	m = Similarity(ma, "photosynthesis uses CHLOROPHYLL")
	if m.MatchedCount != 0 {
		t.Errorf("case-sensitive MatchedCount = %d, want 0", m.MatchedCount)
	}
}

func TestSimilarityPunctuationStripped(t *testing.T) {
	ma := model.ModelAnswer{AnswerText: "supply, demand"}
	m := Similarity(ma, "Demand! And (supply).")
	if m.MatchedCount != 2 {
		t.Errorf("MatchedCount = %d, want 2", m.MatchedCount)
	}
}

func TestSimilarityDeduplicatesModelKeywords(t *testing.T) {
	ma := model.ModelAnswer{AnswerText: "energy energy energy transfer"}
	m := Similarity(ma, "energy")
	if m.TotalKeywords != 2 {
		t.Errorf("TotalKeywords = %d, want 2", m.TotalKeywords)
	}
	if m.Score != 0.5 {
		t.Errorf("Score = %f, want 0.5", m.Score)
	}
}

func TestSimilarityPatternShortCircuit(t *testing.T) {
	ma := model.ModelAnswer{
		AnswerText: "completely different words",
		Pattern:    `(?i)E\s*=\s*mc\^?2`,
	}
	m := Similarity(ma, "e = mc^2")
	if !m.PatternMatch || m.Score != 1.0 {
		t.Errorf("pattern match = %v score = %f, want match with score 1.0", m.PatternMatch, m.Score)
	}

	// A non-matching answer falls back to keyword overlap.
	m = Similarity(ma, "no formula here")
	if m.PatternMatch {
		t.Error("PatternMatch should be false when the pattern does not match")
	}
}

func TestSimilarityPatternMatchesWholeAnswer(t *testing.T) {
	ma := model.ModelAnswer{AnswerText: "feline", Pattern: `cat`}

	if m := Similarity(ma, "concatenate strings"); m.PatternMatch || m.Score == 1.0 {
		t.Errorf("pattern inside a longer answer forced score %f", m.Score)
	}
	if m := Similarity(ma, "cat"); !m.PatternMatch || m.Score != 1.0 {
		t.Errorf("exact pattern answer: match = %v score = %f, want 1.0", m.PatternMatch, m.Score)
	}
}

func TestSimilarityInvalidPatternFallsBack(t *testing.T) {
	ma := model.ModelAnswer{AnswerText: "gravity", Pattern: `([`}
	m := Similarity(ma, "gravity pulls")
	if m.PatternMatch {
		t.Error("invalid pattern must not report a match")
	}
	if m.MatchedCount != 1 {
		t.Errorf("MatchedCount = %d, want 1", m.MatchedCount)
	}
}

func TestSimilarityEmptyModelAnswer(t *testing.T) {
	m := Similarity(model.ModelAnswer{}, "anything")
	if m.Score != 0 || m.TotalKeywords != 0 {
		t.Errorf("empty model answer should yield a zero match, got %+v", m)
	}
}

func TestSuggestedMarks(t *testing.T) {
	tests := []struct {
		similarity float64
		marks      float64
		want       float64
	}{
		{0, 8, 0},
		{0.375, 8, 3},
		{0.5, 8, 4},
		{0.44, 10, 4},
		{0.45, 10, 5},
		{1, 8, 8},
	}
	for _, tt := range tests {
		if got := SuggestedMarks(tt.similarity, tt.marks); got != tt.want {
			t.Errorf("SuggestedMarks(%f, %f) = %f, want %f", tt.similarity, tt.marks, got, tt.want)
		}
	}
}
