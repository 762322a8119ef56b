// Package integrity derives suspicious-activity signals from an attempt's
// timestamped answer trail. The output is advisory for human review only:
// it never blocks or alters scoring.
package integrity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// RiskLevel is the ordinal classification of an attempt's signal count.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Policy holds the tunable thresholds. Values are advisory heuristics, not a
// hard contract; Default returns the shipped baseline.
type Policy struct {
	// RapidAnswerGap is the gap below which an answer counts as rapid.
	RapidAnswerGap time.Duration
	// RapidAnswerFlagCount is how many rapid answers raise the TooFastAnswering flag.
	RapidAnswerFlagCount int
	// BiasMinAnswers is the minimum multiple-choice answers before bias is judged.
	BiasMinAnswers int
	// BiasRatio is the dominant-position fraction that raises the PatternBias flag.
	BiasRatio float64
	// QuickSubmitRatio is the fraction of the allotted duration under which a
	// submission counts as too quick.
	QuickSubmitRatio float64
	// QuickSubmitAnsweredRatio is the fraction of questions that must be
	// answered for a quick submission to be suspicious at all.
	QuickSubmitAnsweredRatio float64
}

// Default returns the baseline thresholds.
func Default() Policy {
	return Policy{
		RapidAnswerGap:           3 * time.Second,
		RapidAnswerFlagCount:     3,
		BiasMinAnswers:           5,
		BiasRatio:                0.8,
		QuickSubmitRatio:         0.1,
		QuickSubmitAnsweredRatio: 0.8,
	}
}

// Report is the per-attempt suspicious-activity summary.
type Report struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	StudentID int       `json:"student_id"`

	TooFastAnswering   bool `json:"too_fast_answering"`
	PatternBias        bool `json:"pattern_bias"`
	TooQuickSubmission bool `json:"too_quick_submission"`

	RapidAnswerCount    int     `json:"rapid_answer_count"`
	DominantOptionRatio float64 `json:"dominant_option_ratio"`
	AnsweredCount       int     `json:"answered_count"`
	TotalQuestions      int     `json:"total_questions"`
	ElapsedMinutes      int     `json:"elapsed_minutes"`

	RiskLevel RiskLevel `json:"risk_level"`
}

// Analyze derives the report for one attempt. questions must be the exam's
// full question set (option positions are read from it); answers is the
// attempt's answer trail in any order.
func Analyze(p Policy, exam *model.Exam, attempt *model.Attempt, questions []model.ExamQuestionDetail, answers []model.Answer) Report {
	rep := Report{
		AttemptID:      attempt.ID,
		StudentID:      attempt.StudentID,
		TotalQuestions: len(questions),
	}

	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].Question.ID] = &questions[i].Question
	}

	trail := make([]model.Answer, 0, len(answers))
	for _, a := range answers {
		if a.Answered() {
			trail = append(trail, a)
		}
	}
	sort.Slice(trail, func(i, j int) bool { return trail[i].AnsweredAt.Before(trail[j].AnsweredAt) })
	rep.AnsweredCount = len(trail)

	// Rapid answering: gap from the previous answer, or from the attempt
	// start for the first one.
	prev := attempt.StartedAt
	for _, a := range trail {
		if a.AnsweredAt.Sub(prev) < p.RapidAnswerGap {
			rep.RapidAnswerCount++
		}
		prev = a.AnsweredAt
	}
	rep.TooFastAnswering = rep.RapidAnswerCount >= p.RapidAnswerFlagCount

	// Pattern bias: same option position chosen for an anomalously high
	// fraction of multiple-choice answers.
	positionCounts := make(map[int]int)
	mcAnswers := 0
	for _, a := range trail {
		q := byID[a.QuestionID]
		if q == nil || q.QuestionType != model.QuestionTypeMultipleChoice || a.SelectedOptionID == nil {
			continue
		}
		pos := q.OptionPosition(*a.SelectedOptionID)
		if pos < 0 {
			continue
		}
		mcAnswers++
		positionCounts[pos]++
	}
	if mcAnswers >= p.BiasMinAnswers {
		dominant := 0
		for _, n := range positionCounts {
			if n > dominant {
				dominant = n
			}
		}
		rep.DominantOptionRatio = float64(dominant) / float64(mcAnswers)
		rep.PatternBias = rep.DominantOptionRatio >= p.BiasRatio
	}

	// Quick submission: a small fraction of the allotted time used, yet most
	// questions answered.
	if attempt.SubmittedAt != nil && exam.DurationMinutes > 0 && len(questions) > 0 {
		elapsed := attempt.SubmittedAt.Sub(attempt.StartedAt)
		rep.ElapsedMinutes = int(elapsed / time.Minute)
		allotted := time.Duration(exam.DurationMinutes) * time.Minute
		answeredRatio := float64(rep.AnsweredCount) / float64(len(questions))
		if elapsed < time.Duration(p.QuickSubmitRatio*float64(allotted)) &&
			answeredRatio >= p.QuickSubmitAnsweredRatio {
			rep.TooQuickSubmission = true
		}
	}

	rep.RiskLevel = riskLevel(rep)
	return rep
}

func riskLevel(rep Report) RiskLevel {
	flags := 0
	if rep.TooFastAnswering {
		flags++
	}
	if rep.PatternBias {
		flags++
	}
	if rep.TooQuickSubmission {
		flags++
	}
	switch {
	case flags == 0:
		return RiskLow
	case flags <= 2:
		return RiskMedium
	default:
		return RiskHigh
	}
}
