package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

func mcQuestion(marks float64) (model.ExamQuestionDetail, uuid.UUID, uuid.UUID) {
	correct := uuid.New()
	wrong := uuid.New()
	q := model.ExamQuestionDetail{
		Question: model.Question{
			ID:           uuid.New(),
			QuestionType: model.QuestionTypeMultipleChoice,
			Options: []model.Option{
				{ID: correct, IsCorrect: true, Position: 1},
				{ID: wrong, Position: 2},
			},
		},
		Marks: marks,
	}
	return q, correct, wrong
}

func textQuestion(marks float64, modelAnswer string) model.ExamQuestionDetail {
	return model.ExamQuestionDetail{
		Question: model.Question{
			ID:           uuid.New(),
			QuestionType: model.QuestionTypeText,
			ModelAnswer:  &model.ModelAnswer{AnswerText: modelAnswer},
		},
		Marks: marks,
	}
}

func TestScoreAnswerObjective(t *testing.T) {
	q, correct, wrong := mcQuestion(2)

	res := ScoreAnswer(q, &model.Answer{QuestionID: q.Question.ID, SelectedOptionID: &correct})
	if !res.IsCorrect || res.MarksObtained == nil || *res.MarksObtained != 2 {
		t.Errorf("correct option: got %+v, want 2 marks", res)
	}

	res = ScoreAnswer(q, &model.Answer{QuestionID: q.Question.ID, SelectedOptionID: &wrong})
	if res.IsCorrect || res.MarksObtained == nil || *res.MarksObtained != 0 {
		t.Errorf("wrong option: got %+v, want 0 marks", res)
	}
	if res.NeedsManualGrading {
		t.Error("objective answers never need manual grading")
	}
}

func TestScoreAnswerUnanswered(t *testing.T) {
	q, _, _ := mcQuestion(2)

	for _, answer := range []*model.Answer{nil, {QuestionID: q.Question.ID}} {
		res := ScoreAnswer(q, answer)
		if res.Answered {
			t.Error("unanswered question reported as answered")
		}
		if res.MarksObtained == nil || *res.MarksObtained != 0 {
			t.Errorf("unanswered marks = %v, want 0", res.MarksObtained)
		}
		if res.NeedsManualGrading {
			t.Error("unanswered question must not queue for manual grading")
		}
	}
}

func TestScoreAnswerText(t *testing.T) {
	q := textQuestion(8, "mitochondria powerhouse cell energy")
	text := "the mitochondria produces energy"

	res := ScoreAnswer(q, &model.Answer{QuestionID: q.Question.ID, AnswerText: &text})
	if !res.NeedsManualGrading {
		t.Fatal("text answer must need manual grading")
	}
	if res.MarksObtained != nil {
		t.Errorf("text marks = %v, want nil until graded", res.MarksObtained)
	}
	if res.Similarity == nil || *res.Similarity != 0.5 {
		t.Errorf("similarity = %v, want 0.5 (2 of 4 keywords)", res.Similarity)
	}
	if res.SuggestedMarks == nil || *res.SuggestedMarks != 4 {
		t.Errorf("suggested marks = %v, want 4", res.SuggestedMarks)
	}
}

func TestScoreAnswerTextWithoutModelAnswer(t *testing.T) {
	q := textQuestion(8, "")
	q.Question.ModelAnswer = nil
	text := "anything"

	res := ScoreAnswer(q, &model.Answer{QuestionID: q.Question.ID, AnswerText: &text})
	if !res.NeedsManualGrading {
		t.Error("text answer must queue for manual grading")
	}
	if res.Similarity != nil || res.SuggestedMarks != nil {
		t.Error("no model answer means no suggestion")
	}
}

func TestScoreAttempt(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	q2, _, wrong2 := mcQuestion(2)
	q3 := textQuestion(8, "keywords here")
	questions := []model.ExamQuestionDetail{q1, q2, q3}

	now := time.Now()
	text := "some keywords"
	answers := []model.Answer{
		{QuestionID: q1.Question.ID, SelectedOptionID: &correct1, AnsweredAt: now},
		{QuestionID: q2.Question.ID, SelectedOptionID: &wrong2, AnsweredAt: now},
		{QuestionID: q3.Question.ID, AnswerText: &text, AnsweredAt: now},
	}

	results, err := ScoreAttempt(questions, answers)
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want one per exam question", len(results))
	}
	if *results[0].MarksObtained != 2 || *results[1].MarksObtained != 0 {
		t.Errorf("objective marks = %v, %v; want 2, 0", *results[0].MarksObtained, *results[1].MarksObtained)
	}
	if !results[2].NeedsManualGrading {
		t.Error("text result must be pending manual grading")
	}
}

func TestScoreAttemptUnansweredQuestionsIncluded(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	q2, _, _ := mcQuestion(2)
	questions := []model.ExamQuestionDetail{q1, q2}

	answers := []model.Answer{
		{QuestionID: q1.Question.ID, SelectedOptionID: &correct1, AnsweredAt: time.Now()},
	}

	results, err := ScoreAttempt(questions, answers)
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[1].Answered {
		t.Error("second question should score as unanswered")
	}
	if *results[1].MarksObtained != 0 {
		t.Errorf("unanswered marks = %v, want 0", *results[1].MarksObtained)
	}
}

func TestScoreAttemptRejectsForeignQuestion(t *testing.T) {
	q1, correct1, _ := mcQuestion(2)
	answers := []model.Answer{
		{QuestionID: uuid.New(), SelectedOptionID: &correct1, AnsweredAt: time.Now()},
	}

	_, err := ScoreAttempt([]model.ExamQuestionDetail{q1}, answers)
	if !errors.Is(err, ErrQuestionNotInExam) {
		t.Errorf("err = %v, want ErrQuestionNotInExam", err)
	}
}
