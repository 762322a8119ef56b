// Package grading implements the pure scoring engine: objective answer
// scoring, text-answer similarity suggestions, and score aggregation.
// Nothing here touches storage; services feed it loaded rows and persist
// the results.
package grading

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// ErrQuestionNotInExam is returned when an answer references a question that
// is not part of the exam being graded. Grading fails closed rather than
// guessing.
var ErrQuestionNotInExam = errors.New("answer references a question not in the exam")

// Result is the grading outcome for one question of one attempt.
// For text answers MarksObtained stays nil and NeedsManualGrading is set;
// Similarity and SuggestedMarks carry the advisory suggestion.
type Result struct {
	QuestionID         uuid.UUID
	Answered           bool
	IsCorrect          bool
	MarksObtained      *float64
	NeedsManualGrading bool
	Similarity         *float64
	SuggestedMarks     *float64
}

// ScoreAnswer grades a single answer against its question definition.
// answer may be nil for an unanswered question: it scores 0, is marked
// incorrect, and never requires manual grading.
func ScoreAnswer(q model.ExamQuestionDetail, answer *model.Answer) Result {
	res := Result{QuestionID: q.Question.ID}

	if answer == nil || !answer.Answered() {
		zero := 0.0
		res.MarksObtained = &zero
		return res
	}
	res.Answered = true

	if q.Question.QuestionType.Objective() {
		marks := 0.0
		if answer.SelectedOptionID != nil {
			for _, id := range q.Question.CorrectOptionIDs() {
				if *answer.SelectedOptionID == id {
					res.IsCorrect = true
					marks = q.Marks
					break
				}
			}
		}
		res.MarksObtained = &marks
		return res
	}

	// Text answer: advisory suggestion only, marks await the instructor.
	res.NeedsManualGrading = true
	if q.Question.ModelAnswer != nil && answer.AnswerText != nil {
		m := Similarity(*q.Question.ModelAnswer, *answer.AnswerText)
		sim := m.Score
		suggested := SuggestedMarks(sim, q.Marks)
		res.Similarity = &sim
		res.SuggestedMarks = &suggested
	}
	return res
}

// ScoreAttempt grades every question of the exam in order: answered or not,
// each exam question yields exactly one Result. An answer pointing outside
// the exam's question set fails the whole run with ErrQuestionNotInExam.
func ScoreAttempt(questions []model.ExamQuestionDetail, answers []model.Answer) ([]Result, error) {
	byQuestion := make(map[uuid.UUID]*model.Answer, len(answers))
	known := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		known[q.Question.ID] = true
	}
	for i := range answers {
		a := &answers[i]
		if !known[a.QuestionID] {
			return nil, fmt.Errorf("question %s: %w", a.QuestionID, ErrQuestionNotInExam)
		}
		byQuestion[a.QuestionID] = a
	}

	results := make([]Result, 0, len(questions))
	for _, q := range questions {
		results = append(results, ScoreAnswer(q, byQuestion[q.Question.ID]))
	}
	return results, nil
}
