package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates the lifecycle of an attempt. EXPIRED is never
// stored: it is derived on read and immediately resolved by auto-submission.
type AttemptStatus string

const (
	AttemptStatusStarted    AttemptStatus = "STARTED"
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusGraded     AttemptStatus = "GRADED"
	AttemptStatusExpired    AttemptStatus = "EXPIRED"
)

// Attempt is one student's timed instance of taking one exam.
// Score fields stay nil until grading completes; IsPassed stays nil while any
// text answer awaits manual grading.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	ExamID      uuid.UUID     `json:"exam_id"`
	StudentID   int           `json:"student_id"`
	Status      AttemptStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	TotalScore  *float64      `json:"total_score,omitempty"`
	Percentage  *float64      `json:"percentage,omitempty"`
	IsPassed    *bool         `json:"is_passed,omitempty"`
	// OriginAttemptID links a remedial attempt to the failed attempt it follows.
	OriginAttemptID *uuid.UUID `json:"origin_attempt_id,omitempty"`
}

// Deadline returns the instant the attempt window closes.
func (a *Attempt) Deadline(durationMinutes int) time.Time {
	return a.StartedAt.Add(time.Duration(durationMinutes) * time.Minute)
}

// RemainingMinutes returns max(0, duration - elapsed), rounded down.
func (a *Attempt) RemainingMinutes(durationMinutes int, now time.Time) int {
	remaining := a.Deadline(durationMinutes).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Minute)
}

// Expired reports whether the window elapsed without a submission.
// Expiry is detected lazily on access; there is no background timer.
func (a *Attempt) Expired(durationMinutes int, now time.Time) bool {
	return a.SubmittedAt == nil && !now.Before(a.Deadline(durationMinutes))
}

// Closed reports whether the attempt accepts no further mutation.
func (a *Attempt) Closed(durationMinutes int, now time.Time) bool {
	return a.SubmittedAt != nil || a.Expired(durationMinutes, now)
}

// EffectiveStatus resolves the stored status against the clock, surfacing
// EXPIRED for read purposes when the window has elapsed unsubmitted.
func (a *Attempt) EffectiveStatus(durationMinutes int, now time.Time) AttemptStatus {
	if a.Expired(durationMinutes, now) {
		return AttemptStatusExpired
	}
	return a.Status
}
