package grading

import (
	"sort"

	"github.com/google/uuid"
)

// Cohort fraction used for the discrimination index: the classical 27% rule.
const cohortFraction = 0.27

// Minimum graded attempts before a discrimination index is reported.
const minAttemptsForDiscrimination = 6

// AttemptScore is a fully graded attempt's total, the ranking input for
// cohort selection.
type AttemptScore struct {
	AttemptID  uuid.UUID
	TotalScore float64
}

// ItemOutcome is one attempt's correctness on one question.
type ItemOutcome struct {
	AttemptID  uuid.UUID
	QuestionID uuid.UUID
	Correct    bool
}

// ItemStat summarizes one question's behavior across a population of graded
// attempts.
type ItemStat struct {
	QuestionID          uuid.UUID `json:"question_id"`
	Attempts            int       `json:"attempts"`
	CorrectRate         float64   `json:"correct_rate"`
	DiscriminationIndex *float64  `json:"discrimination_index,omitempty"`
	Quality             string    `json:"quality"`
	Recommendation      string    `json:"recommendation"`
}

// ItemStatistics computes per-question difficulty (correct rate) and the
// upper/lower cohort discrimination index. Output is ordered by question ID
// so repeated runs over the same inputs are identical.
func ItemStatistics(scores []AttemptScore, outcomes []ItemOutcome) []ItemStat {
	ranked := make([]AttemptScore, len(scores))
	copy(ranked, scores)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].AttemptID.String() < ranked[j].AttemptID.String()
	})

	cohortSize := int(float64(len(ranked)) * cohortFraction)
	if cohortSize < 1 {
		cohortSize = 1
	}
	upper := make(map[uuid.UUID]bool, cohortSize)
	lower := make(map[uuid.UUID]bool, cohortSize)
	if len(ranked) >= minAttemptsForDiscrimination {
		for _, s := range ranked[:cohortSize] {
			upper[s.AttemptID] = true
		}
		for _, s := range ranked[len(ranked)-cohortSize:] {
			lower[s.AttemptID] = true
		}
	}

	type counts struct {
		total, correct             int
		upperTotal, upperCorrect   int
		lowerTotal, lowerCorrect   int
	}
	perQuestion := make(map[uuid.UUID]*counts)
	for _, o := range outcomes {
		c := perQuestion[o.QuestionID]
		if c == nil {
			c = &counts{}
			perQuestion[o.QuestionID] = c
		}
		c.total++
		if o.Correct {
			c.correct++
		}
		if upper[o.AttemptID] {
			c.upperTotal++
			if o.Correct {
				c.upperCorrect++
			}
		}
		if lower[o.AttemptID] {
			c.lowerTotal++
			if o.Correct {
				c.lowerCorrect++
			}
		}
	}

	ids := make([]uuid.UUID, 0, len(perQuestion))
	for id := range perQuestion {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	stats := make([]ItemStat, 0, len(ids))
	for _, id := range ids {
		c := perQuestion[id]
		stat := ItemStat{
			QuestionID:  id,
			Attempts:    c.total,
			CorrectRate: float64(c.correct) / float64(c.total),
		}
		if c.upperTotal > 0 && c.lowerTotal > 0 {
			d := float64(c.upperCorrect)/float64(c.upperTotal) - float64(c.lowerCorrect)/float64(c.lowerTotal)
			stat.DiscriminationIndex = &d
			stat.Quality, stat.Recommendation = classifyDiscrimination(d)
		} else {
			stat.Quality = "INSUFFICIENT_DATA"
			stat.Recommendation = "Collect more graded attempts before judging this question."
		}
		stats = append(stats, stat)
	}
	return stats
}

func classifyDiscrimination(d float64) (quality, recommendation string) {
	switch {
	case d >= 0.4:
		return "EXCELLENT", "Keep this question as-is."
	case d >= 0.3:
		return "GOOD", "Keep this question; minor wording review optional."
	case d >= 0.2:
		return "ACCEPTABLE", "Review distractors for ambiguity."
	case d >= 0:
		return "WEAK", "Revise this question; it barely separates strong and weak students."
	default:
		return "DEFECTIVE", "Replace this question; weaker students outperform stronger ones on it."
	}
}
