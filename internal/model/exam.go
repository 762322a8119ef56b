package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamType distinguishes a regular exam from a remedial follow-up.
type ExamType string

const (
	ExamTypeRegular  ExamType = "REGULAR"
	ExamTypeRemedial ExamType = "REMEDIAL"
)

// Exam represents a scheduled exam. The window is [ScheduledStart, ScheduledEnd);
// an attempt additionally runs against DurationMinutes from its own start.
type Exam struct {
	ID              uuid.UUID `json:"id"`
	CourseID        uuid.UUID `json:"course_id"`
	Title           string    `json:"title"`
	ExamType        ExamType  `json:"exam_type"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	ScheduledEnd    time.Time `json:"scheduled_end"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      float64   `json:"total_marks"`
	PassMarks       float64   `json:"pass_marks"`
	// OriginExamID links a remedial exam back to the regular exam it remediates.
	OriginExamID *uuid.UUID `json:"origin_exam_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WindowOpen reports whether now falls inside the exam window [start, end).
func (e *Exam) WindowOpen(now time.Time) bool {
	return !now.Before(e.ScheduledStart) && now.Before(e.ScheduledEnd)
}

// ApplyDefaultPassMarks fills in the pass threshold for an exam authored
// without one, as a percentage of its total marks.
func (e *Exam) ApplyDefaultPassMarks(pct float64) {
	if e.PassMarks <= 0 {
		e.PassMarks = e.TotalMarks * pct / 100
	}
}

// ExamQuestion binds a question into an exam with an order and a marks weight.
type ExamQuestion struct {
	ExamID     uuid.UUID `json:"exam_id"`
	QuestionID uuid.UUID `json:"question_id"`
	OrderNum   int       `json:"order_num"`
	Marks      float64   `json:"marks"`
}

// ExamQuestionDetail joins a question definition with its exam binding.
// Repositories return this view; the grading engine consumes it.
type ExamQuestionDetail struct {
	Question Question `json:"question"`
	OrderNum int      `json:"order_num"`
	Marks    float64  `json:"marks"`
}

// AvailableExam is an exam as listed to a student, with the status of any
// existing attempt overlaid.
type AvailableExam struct {
	Exam
	AttemptID     *uuid.UUID     `json:"attempt_id,omitempty"`
	AttemptStatus *AttemptStatus `json:"attempt_status,omitempty"`
	TotalScore    *float64       `json:"total_score,omitempty"`
}
