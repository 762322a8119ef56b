package grading

import (
	"fmt"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// Aggregate is the attempt-level rollup of per-question marks.
// TotalScore is provisional while PendingManual > 0: ungraded text answers
// count as 0 and IsPassed stays nil until the instructor finishes grading.
type Aggregate struct {
	TotalScore    float64
	Percentage    float64
	PendingManual int
	IsPassed      *bool
}

// AggregateResults rolls freshly scored results up into an attempt aggregate,
// the submission-time counterpart of Compute.
func AggregateResults(exam *model.Exam, results []Result) Aggregate {
	var agg Aggregate
	for _, r := range results {
		if r.MarksObtained != nil {
			agg.TotalScore += *r.MarksObtained
			continue
		}
		if r.NeedsManualGrading {
			agg.PendingManual++
		}
	}
	if exam.TotalMarks > 0 {
		agg.Percentage = agg.TotalScore / exam.TotalMarks * 100
	}
	if agg.PendingManual == 0 {
		passed := agg.TotalScore >= exam.PassMarks
		agg.IsPassed = &passed
	}
	return agg
}

// Compute recomputes the aggregate from the full answer set. It is always a
// full recomputation, never an increment, so concurrent grading of different
// questions on the same attempt cannot lose updates.
func Compute(exam *model.Exam, questions []model.ExamQuestionDetail, answers []model.Answer) (Aggregate, error) {
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.Question.ID.String()] = true
	}

	byQuestion := make(map[string]*model.Answer, len(answers))
	for i := range answers {
		a := &answers[i]
		if !known[a.QuestionID.String()] {
			return Aggregate{}, fmt.Errorf("question %s: %w", a.QuestionID, ErrQuestionNotInExam)
		}
		byQuestion[a.QuestionID.String()] = a
	}

	var agg Aggregate
	for _, q := range questions {
		a := byQuestion[q.Question.ID.String()]
		if a == nil || !a.Answered() {
			continue // unanswered scores 0, no manual grading required
		}
		if a.MarksObtained != nil {
			agg.TotalScore += *a.MarksObtained
			continue
		}
		if a.NeedsManualGrading {
			agg.PendingManual++
		}
	}

	if exam.TotalMarks > 0 {
		agg.Percentage = agg.TotalScore / exam.TotalMarks * 100
	}
	if agg.PendingManual == 0 {
		passed := agg.TotalScore >= exam.PassMarks
		agg.IsPassed = &passed
	}
	return agg, nil
}
