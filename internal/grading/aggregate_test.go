package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

func fptr(f float64) *float64 { return &f }

func TestAggregateResultsAllObjective(t *testing.T) {
	exam := &model.Exam{TotalMarks: 4, PassMarks: 2}
	results := []Result{
		{MarksObtained: fptr(2), IsCorrect: true, Answered: true},
		{MarksObtained: fptr(0), Answered: true},
	}

	agg := AggregateResults(exam, results)
	if agg.TotalScore != 2 {
		t.Errorf("TotalScore = %f, want 2", agg.TotalScore)
	}
	if agg.Percentage != 50 {
		t.Errorf("Percentage = %f, want 50", agg.Percentage)
	}
	if agg.PendingManual != 0 {
		t.Errorf("PendingManual = %d, want 0", agg.PendingManual)
	}
	if agg.IsPassed == nil || !*agg.IsPassed {
		t.Error("score meeting pass marks exactly must pass")
	}
}

func TestAggregateResultsPendingManual(t *testing.T) {
	exam := &model.Exam{TotalMarks: 12, PassMarks: 6}
	results := []Result{
		{MarksObtained: fptr(4), IsCorrect: true, Answered: true},
		{NeedsManualGrading: true, Answered: true, Similarity: fptr(0.375), SuggestedMarks: fptr(3)},
	}

	agg := AggregateResults(exam, results)
	if agg.TotalScore != 4 {
		t.Errorf("provisional TotalScore = %f, want 4", agg.TotalScore)
	}
	if agg.PendingManual != 1 {
		t.Errorf("PendingManual = %d, want 1", agg.PendingManual)
	}
	if agg.IsPassed != nil {
		t.Error("IsPassed must stay nil while manual grading is pending")
	}
}

func TestAggregateResultsZeroTotalMarks(t *testing.T) {
	exam := &model.Exam{TotalMarks: 0, PassMarks: 0}
	agg := AggregateResults(exam, []Result{{MarksObtained: fptr(0)}})
	if agg.Percentage != 0 {
		t.Errorf("Percentage = %f, want 0 for a zero-mark exam", agg.Percentage)
	}
}

func TestComputeAfterManualGrade(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	q2 := textQuestion(8, "whatever")
	questions := []model.ExamQuestionDetail{q1, q2}
	exam := &model.Exam{TotalMarks: 10, PassMarks: 6}

	now := time.Now()
	text := "an essay"
	answers := []model.Answer{
		{QuestionID: q1.Question.ID, SelectedOptionID: &correct1, AnsweredAt: now, MarksObtained: fptr(2)},
		{QuestionID: q2.Question.ID, AnswerText: &text, AnsweredAt: now, MarksObtained: fptr(5)},
	}

	agg, err := Compute(exam, questions, answers)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if agg.TotalScore != 7 {
		t.Errorf("TotalScore = %f, want 7", agg.TotalScore)
	}
	if agg.Percentage != 70 {
		t.Errorf("Percentage = %f, want 70", agg.Percentage)
	}
	if agg.IsPassed == nil || !*agg.IsPassed {
		t.Error("7 of 10 with pass marks 6 must pass")
	}
}

func TestComputeStillPending(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	q2 := textQuestion(8, "whatever")
	exam := &model.Exam{TotalMarks: 10, PassMarks: 6}

	now := time.Now()
	text := "an essay"
	answers := []model.Answer{
		{QuestionID: q1.Question.ID, SelectedOptionID: &correct1, AnsweredAt: now, MarksObtained: fptr(2)},
		{QuestionID: q2.Question.ID, AnswerText: &text, AnsweredAt: now, NeedsManualGrading: true},
	}

	agg, err := Compute(exam, []model.ExamQuestionDetail{q1, q2}, answers)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if agg.PendingManual != 1 {
		t.Errorf("PendingManual = %d, want 1", agg.PendingManual)
	}
	if agg.IsPassed != nil {
		t.Error("IsPassed must stay nil while an answer is ungraded")
	}
}

func TestComputeUnansweredIgnored(t *testing.T) {
	q1, _, _ := mcQuestion(2)
	q2 := textQuestion(8, "whatever")
	exam := &model.Exam{TotalMarks: 10, PassMarks: 6}

	agg, err := Compute(exam, []model.ExamQuestionDetail{q1, q2}, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if agg.TotalScore != 0 || agg.PendingManual != 0 {
		t.Errorf("empty answers: got %+v, want zero score and no pending", agg)
	}
	if agg.IsPassed == nil || *agg.IsPassed {
		t.Error("a zero-score attempt with a positive pass mark must fail")
	}
}

func TestComputeRejectsForeignQuestion(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	exam := &model.Exam{TotalMarks: 2, PassMarks: 1}
	answers := []model.Answer{
		{QuestionID: uuid.New(), SelectedOptionID: &correct1, AnsweredAt: time.Now()},
	}

	_, err := Compute(exam, []model.ExamQuestionDetail{q1}, answers)
	if !errors.Is(err, ErrQuestionNotInExam) {
		t.Errorf("err = %v, want ErrQuestionNotInExam", err)
	}
}
