package integrity

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

func buildExamFixture(mcCount int) (*model.Exam, []model.ExamQuestionDetail, [][]uuid.UUID) {
	exam := &model.Exam{ID: uuid.New(), DurationMinutes: 60}
	var questions []model.ExamQuestionDetail
	var optionIDs [][]uuid.UUID
	for i := 0; i < mcCount; i++ {
		opts := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		q := model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeMultipleChoice}
		for pos, id := range opts {
			q.Options = append(q.Options, model.Option{ID: id, QuestionID: q.ID, Position: pos})
		}
		questions = append(questions, model.ExamQuestionDetail{Question: q, OrderNum: i + 1, Marks: 1})
		optionIDs = append(optionIDs, opts)
	}
	return exam, questions, optionIDs
}

func TestAnalyzeCleanAttempt(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start}

	// Vary the chosen position and space answers a minute apart.
	var answers []model.Answer
	for i, q := range questions {
		id := opts[i][i%4]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * time.Minute),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if rep.TooFastAnswering || rep.PatternBias || rep.TooQuickSubmission {
		t.Errorf("clean attempt raised flags: %+v", rep)
	}
	if rep.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want LOW", rep.RiskLevel)
	}
	if rep.AnsweredCount != 6 {
		t.Errorf("AnsweredCount = %d, want 6", rep.AnsweredCount)
	}
}

func TestAnalyzeTooFastAnswering(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start}

	// First three answers land a second apart, the rest spaced out.
	var answers []model.Answer
	for i, q := range questions {
		at := start.Add(time.Duration(i+1) * time.Second)
		if i >= 3 {
			at = start.Add(time.Duration(i) * time.Minute)
		}
		id := opts[i][i%4]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       at,
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if !rep.TooFastAnswering {
		t.Errorf("TooFastAnswering not raised, rapid count = %d", rep.RapidAnswerCount)
	}
	if rep.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %s, want MEDIUM for one flag", rep.RiskLevel)
	}
}

func TestAnalyzePatternBias(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start}

	// Always pick position 2.
	var answers []model.Answer
	for i, q := range questions {
		id := opts[i][2]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * time.Minute),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if !rep.PatternBias {
		t.Errorf("PatternBias not raised, dominant ratio = %f", rep.DominantOptionRatio)
	}
	if rep.DominantOptionRatio != 1.0 {
		t.Errorf("DominantOptionRatio = %f, want 1.0", rep.DominantOptionRatio)
	}
}

func TestAnalyzePatternBiasNeedsEnoughAnswers(t *testing.T) {
	exam, questions, opts := buildExamFixture(4)
	start := time.Now()
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start}

	var answers []model.Answer
	for i, q := range questions {
		id := opts[i][0]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * time.Minute),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if rep.PatternBias {
		t.Error("PatternBias must not be judged under the minimum answer count")
	}
}

func TestAnalyzeTooQuickSubmission(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	submitted := start.Add(4 * time.Minute) // under 10% of 60 minutes
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start, SubmittedAt: &submitted}

	var answers []model.Answer
	for i, q := range questions {
		id := opts[i][i%4]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * 30 * time.Second),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if !rep.TooQuickSubmission {
		t.Errorf("TooQuickSubmission not raised, elapsed = %d minutes", rep.ElapsedMinutes)
	}
}

func TestAnalyzeQuickSubmissionIgnoresSparseAttempts(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	submitted := start.Add(2 * time.Minute)
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start, SubmittedAt: &submitted}

	// Only 2 of 6 answered: giving up early is not suspicious.
	var answers []model.Answer
	for i := 0; i < 2; i++ {
		id := opts[i][i%4]
		answers = append(answers, model.Answer{
			QuestionID:       questions[i].Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * time.Minute),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if rep.TooQuickSubmission {
		t.Error("sparse early submission must not raise TooQuickSubmission")
	}
}

func TestAnalyzeHighRisk(t *testing.T) {
	exam, questions, opts := buildExamFixture(6)
	start := time.Now()
	submitted := start.Add(time.Minute)
	attempt := &model.Attempt{ID: uuid.New(), StudentID: 1, StartedAt: start, SubmittedAt: &submitted}

	// Same position every time, all answered within seconds of each other.
	var answers []model.Answer
	for i, q := range questions {
		id := opts[i][1]
		answers = append(answers, model.Answer{
			QuestionID:       q.Question.ID,
			SelectedOptionID: &id,
			AnsweredAt:       start.Add(time.Duration(i+1) * time.Second),
		})
	}

	rep := Analyze(Default(), exam, attempt, questions, answers)
	if !rep.TooFastAnswering || !rep.PatternBias || !rep.TooQuickSubmission {
		t.Fatalf("expected all three flags, got %+v", rep)
	}
	if rep.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want HIGH for three flags", rep.RiskLevel)
	}
}
