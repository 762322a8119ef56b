// Package eligibility decides whether a student may start an exam. Rules are
// evaluated in a fixed order and the first failure wins; the decision carries
// a typed reason so the API can report why entry was denied.
package eligibility

import (
	"time"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// Reason identifies which rule denied entry.
type Reason string

const (
	ReasonNotEnrolled         Reason = "NOT_ENROLLED"
	ReasonOutsideWindow       Reason = "OUTSIDE_WINDOW"
	ReasonAlreadySubmitted    Reason = "ALREADY_SUBMITTED"
	ReasonRetakesExhausted    Reason = "RETAKES_EXHAUSTED"
	ReasonNotRemedialCandidate Reason = "NOT_REMEDIAL_CANDIDATE"
)

// Message returns a human-readable explanation for a denial reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNotEnrolled:
		return "You are not enrolled in this exam's course."
	case ReasonOutsideWindow:
		return "The exam is not open at this time."
	case ReasonAlreadySubmitted:
		return "You have already submitted an attempt for this exam."
	case ReasonRetakesExhausted:
		return "No remedial retakes remain for this exam."
	case ReasonNotRemedialCandidate:
		return "You are not an eligible candidate for this remedial exam."
	default:
		return "You may not start this exam."
	}
}

// Facts are the loaded inputs the rules run against. The caller gathers them
// from storage; evaluation itself is pure.
type Facts struct {
	Now  time.Time
	Exam *model.Exam
	// Enrolled reports membership in the exam's course.
	Enrolled bool
	// SubmittedAttempts is the number of submitted attempts the student
	// already has on this exam.
	SubmittedAttempts int
	// RemedialCandidate reports membership in the remedial-candidate set for
	// the exam's originating regular exam. Only consulted for remedial exams.
	RemedialCandidate bool
	// MaxRetakes bounds submitted remedial attempts per student and exam.
	MaxRetakes int
}

// Decision is the outcome of an eligibility evaluation.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Evaluate applies the entry rules in order, first failure wins:
// enrollment, exam window, prior-submission/retake rules, remedial candidacy.
func Evaluate(f Facts) Decision {
	if !f.Enrolled {
		return deny(ReasonNotEnrolled)
	}
	if !f.Exam.WindowOpen(f.Now) {
		return deny(ReasonOutsideWindow)
	}

	if f.Exam.ExamType == model.ExamTypeRemedial {
		if !f.RemedialCandidate {
			return deny(ReasonNotRemedialCandidate)
		}
		if f.SubmittedAttempts >= f.MaxRetakes {
			return deny(ReasonRetakesExhausted)
		}
		return Decision{Allowed: true}
	}

	if f.SubmittedAttempts > 0 {
		return deny(ReasonAlreadySubmitted)
	}
	return Decision{Allowed: true}
}
