package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a student's recorded answer for one question of one attempt.
// At most one row exists per (attempt, question): later submissions replace
// the earlier one. MarksObtained stays nil for text answers until an
// instructor grades them.
type Answer struct {
	ID                 uuid.UUID  `json:"id"`
	AttemptID          uuid.UUID  `json:"attempt_id"`
	QuestionID         uuid.UUID  `json:"question_id"`
	SelectedOptionID   *uuid.UUID `json:"selected_option_id,omitempty"`
	AnswerText         *string    `json:"answer_text,omitempty"`
	AnsweredAt         time.Time  `json:"answered_at"`
	IsCorrect          *bool      `json:"is_correct,omitempty"`
	MarksObtained      *float64   `json:"marks_obtained,omitempty"`
	NeedsManualGrading bool       `json:"needs_manual_grading"`
	SimilarityScore    *float64   `json:"similarity_score,omitempty"`
	SuggestedMarks     *float64   `json:"suggested_marks,omitempty"`
	InstructorComments *string    `json:"instructor_comments,omitempty"`
	GradedAt           *time.Time `json:"graded_at,omitempty"`
}

// Answered reports whether the answer carries an actual response.
func (a *Answer) Answered() bool {
	if a.SelectedOptionID != nil {
		return true
	}
	return a.AnswerText != nil && *a.AnswerText != ""
}

// UpsertAnswerRequest is the payload for recording a single answer.
// Exactly one of selected_option_id / answer_text must be set, matching the
// question's declared type.
type UpsertAnswerRequest struct {
	QuestionID       uuid.UUID  `json:"question_id" binding:"required"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id" binding:"omitempty"`
	AnswerText       *string    `json:"answer_text" binding:"omitempty,max=10000"`
}

// SubmitAnswersRequest is a batch of upserts. Items apply sequentially and
// are not atomic across the batch: a failure leaves earlier items committed.
type SubmitAnswersRequest struct {
	Answers []UpsertAnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// GradeTextAnswerRequest is the instructor payload for confirming the marks
// of a text answer.
type GradeTextAnswerRequest struct {
	Marks    float64 `json:"marks" binding:"min=0"`
	Comments string  `json:"comments" binding:"omitempty,max=2000"`
}

// PendingTextAnswer is a text answer awaiting manual grading, enriched with
// the similarity suggestion for the instructor.
type PendingTextAnswer struct {
	AnswerID         uuid.UUID `json:"answer_id"`
	AttemptID        uuid.UUID `json:"attempt_id"`
	StudentID        int       `json:"student_id"`
	StudentName      string    `json:"student_name"`
	QuestionID       uuid.UUID `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	AnswerText       string    `json:"answer_text"`
	ModelAnswerText  string    `json:"model_answer_text"`
	QuestionMarks    float64   `json:"question_marks"`
	SimilarityScore  float64   `json:"similarity_score"`
	SuggestedMarks   float64   `json:"suggested_marks"`
	MatchingKeywords int       `json:"matching_keywords"`
	TotalKeywords    int       `json:"total_keywords"`
	AnsweredAt       time.Time `json:"answered_at"`
	HoursPending     int       `json:"hours_pending"`
}

// PendingGradingSummary buckets pending text answers by similarity band.
type PendingGradingSummary struct {
	TotalAnswers          int     `json:"total_answers"`
	HighSimilarityCount   int     `json:"high_similarity_count"`
	MediumSimilarityCount int     `json:"medium_similarity_count"`
	LowSimilarityCount    int     `json:"low_similarity_count"`
	AverageSimilarity     float64 `json:"average_similarity"`
	AverageSuggestedMarks float64 `json:"average_suggested_marks"`
}

// QuestionResult is one row of an attempt's per-question result breakdown.
type QuestionResult struct {
	QuestionID         uuid.UUID    `json:"question_id"`
	QuestionText       string       `json:"question_text"`
	QuestionType       QuestionType `json:"question_type"`
	OrderNum           int          `json:"order_num"`
	Marks              float64      `json:"marks"`
	Answered           bool         `json:"answered"`
	IsCorrect          *bool        `json:"is_correct,omitempty"`
	MarksObtained      *float64     `json:"marks_obtained,omitempty"`
	NeedsManualGrading bool         `json:"needs_manual_grading"`
	SuggestedMarks     *float64     `json:"suggested_marks,omitempty"`
	InstructorComments *string      `json:"instructor_comments,omitempty"`
}

// AttemptResult is the full result view of an attempt. IsPassed is nil until
// every question is graded.
type AttemptResult struct {
	Attempt          Attempt          `json:"attempt"`
	ExamTitle        string           `json:"exam_title"`
	TotalMarks       float64          `json:"total_marks"`
	PassMarks        float64          `json:"pass_marks"`
	PendingManual    int              `json:"pending_manual"`
	RemainingMinutes int              `json:"remaining_minutes"`
	Questions        []QuestionResult `json:"questions"`
}
