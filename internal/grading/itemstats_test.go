package grading

import (
	"testing"

	"github.com/google/uuid"
)

func TestItemStatisticsCorrectRate(t *testing.T) {
	q := uuid.New()
	a1, a2 := uuid.New(), uuid.New()

	stats := ItemStatistics(
		[]AttemptScore{{AttemptID: a1, TotalScore: 10}, {AttemptID: a2, TotalScore: 2}},
		[]ItemOutcome{
			{AttemptID: a1, QuestionID: q, Correct: true},
			{AttemptID: a2, QuestionID: q, Correct: false},
		},
	)
	if len(stats) != 1 {
		t.Fatalf("got %d stats, want 1", len(stats))
	}
	if stats[0].Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", stats[0].Attempts)
	}
	if stats[0].CorrectRate != 0.5 {
		t.Errorf("CorrectRate = %f, want 0.5", stats[0].CorrectRate)
	}
}

func TestItemStatisticsSmallPopulationHasNoDiscrimination(t *testing.T) {
	q := uuid.New()
	scores := make([]AttemptScore, 5)
	outcomes := make([]ItemOutcome, 5)
	for i := range scores {
		id := uuid.New()
		scores[i] = AttemptScore{AttemptID: id, TotalScore: float64(i)}
		outcomes[i] = ItemOutcome{AttemptID: id, QuestionID: q, Correct: i%2 == 0}
	}

	stats := ItemStatistics(scores, outcomes)
	if stats[0].DiscriminationIndex != nil {
		t.Error("fewer than 6 attempts must not report a discrimination index")
	}
	if stats[0].Quality != "INSUFFICIENT_DATA" {
		t.Errorf("Quality = %s, want INSUFFICIENT_DATA", stats[0].Quality)
	}
}

func TestItemStatisticsDiscrimination(t *testing.T) {
	// Ten attempts ranked by score: the 27% rule takes 2 into each cohort.
	discriminating := uuid.New()
	flat := uuid.New()

	var scores []AttemptScore
	var outcomes []ItemOutcome
	for i := 0; i < 10; i++ {
		id := uuid.New()
		scores = append(scores, AttemptScore{AttemptID: id, TotalScore: float64(10 - i)})
		// Top half answers the discriminating question correctly.
		outcomes = append(outcomes, ItemOutcome{AttemptID: id, QuestionID: discriminating, Correct: i < 5})
		// Everyone answers the flat question correctly.
		outcomes = append(outcomes, ItemOutcome{AttemptID: id, QuestionID: flat, Correct: true})
	}

	stats := ItemStatistics(scores, outcomes)
	if len(stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(stats))
	}

	byQuestion := map[uuid.UUID]ItemStat{}
	for _, s := range stats {
		byQuestion[s.QuestionID] = s
	}

	d := byQuestion[discriminating]
	if d.DiscriminationIndex == nil || *d.DiscriminationIndex != 1.0 {
		t.Errorf("discriminating index = %v, want 1.0", d.DiscriminationIndex)
	}
	if d.Quality != "EXCELLENT" {
		t.Errorf("discriminating quality = %s, want EXCELLENT", d.Quality)
	}

	f := byQuestion[flat]
	if f.DiscriminationIndex == nil || *f.DiscriminationIndex != 0 {
		t.Errorf("flat index = %v, want 0", f.DiscriminationIndex)
	}
	if f.Quality != "WEAK" {
		t.Errorf("flat quality = %s, want WEAK", f.Quality)
	}
	if f.CorrectRate != 1 {
		t.Errorf("flat correct rate = %f, want 1", f.CorrectRate)
	}
}

func TestItemStatisticsDefectiveClassification(t *testing.T) {
	quality, _ := classifyDiscrimination(-0.2)
	if quality != "DEFECTIVE" {
		t.Errorf("quality = %s, want DEFECTIVE", quality)
	}
}

func TestItemStatisticsEmpty(t *testing.T) {
	if stats := ItemStatistics(nil, nil); len(stats) != 0 {
		t.Errorf("got %d stats for empty input, want 0", len(stats))
	}
}
