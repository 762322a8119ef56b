package eligibility

import (
	"testing"
	"time"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

func openExam(examType model.ExamType, now time.Time) *model.Exam {
	return &model.Exam{
		ExamType:       examType,
		ScheduledStart: now.Add(-time.Hour),
		ScheduledEnd:   now.Add(time.Hour),
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		facts      Facts
		allowed    bool
		wantReason Reason
	}{
		{
			name:    "regular exam first attempt",
			facts:   Facts{Now: now, Exam: openExam(model.ExamTypeRegular, now), Enrolled: true},
			allowed: true,
		},
		{
			name:       "not enrolled",
			facts:      Facts{Now: now, Exam: openExam(model.ExamTypeRegular, now)},
			wantReason: ReasonNotEnrolled,
		},
		{
			name: "before window",
			facts: Facts{
				Now: now,
				Exam: &model.Exam{
					ExamType:       model.ExamTypeRegular,
					ScheduledStart: now.Add(time.Hour),
					ScheduledEnd:   now.Add(2 * time.Hour),
				},
				Enrolled: true,
			},
			wantReason: ReasonOutsideWindow,
		},
		{
			name: "after window",
			facts: Facts{
				Now: now,
				Exam: &model.Exam{
					ExamType:       model.ExamTypeRegular,
					ScheduledStart: now.Add(-2 * time.Hour),
					ScheduledEnd:   now.Add(-time.Hour),
				},
				Enrolled: true,
			},
			wantReason: ReasonOutsideWindow,
		},
		{
			name: "regular exam already submitted",
			facts: Facts{
				Now: now, Exam: openExam(model.ExamTypeRegular, now),
				Enrolled: true, SubmittedAttempts: 1,
			},
			wantReason: ReasonAlreadySubmitted,
		},
		{
			name: "remedial candidate allowed",
			facts: Facts{
				Now: now, Exam: openExam(model.ExamTypeRemedial, now),
				Enrolled: true, RemedialCandidate: true, MaxRetakes: 1,
			},
			allowed: true,
		},
		{
			name: "remedial without a failed origin attempt",
			facts: Facts{
				Now: now, Exam: openExam(model.ExamTypeRemedial, now),
				Enrolled: true, MaxRetakes: 1,
			},
			wantReason: ReasonNotRemedialCandidate,
		},
		{
			name: "remedial retakes exhausted",
			facts: Facts{
				Now: now, Exam: openExam(model.ExamTypeRemedial, now),
				Enrolled: true, RemedialCandidate: true,
				SubmittedAttempts: 1, MaxRetakes: 1,
			},
			wantReason: ReasonRetakesExhausted,
		},
		{
			name: "enrollment checked before window",
			facts: Facts{
				Now: now,
				Exam: &model.Exam{
					ExamType:       model.ExamTypeRegular,
					ScheduledStart: now.Add(time.Hour),
					ScheduledEnd:   now.Add(2 * time.Hour),
				},
			},
			wantReason: ReasonNotEnrolled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.facts)
			if d.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v (reason %s)", d.Allowed, tt.allowed, d.Reason)
			}
			if !tt.allowed && d.Reason != tt.wantReason {
				t.Errorf("Reason = %s, want %s", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestWindowBoundaries(t *testing.T) {
	now := time.Now()
	exam := &model.Exam{
		ExamType:       model.ExamTypeRegular,
		ScheduledStart: now,
		ScheduledEnd:   now.Add(time.Hour),
	}

	// Start instant is inside the window, end instant is outside.
	if d := Evaluate(Facts{Now: now, Exam: exam, Enrolled: true}); !d.Allowed {
		t.Errorf("entry at scheduled start denied: %s", d.Reason)
	}
	if d := Evaluate(Facts{Now: now.Add(time.Hour), Exam: exam, Enrolled: true}); d.Allowed {
		t.Error("entry at scheduled end must be denied")
	}
}

func TestReasonMessages(t *testing.T) {
	reasons := []Reason{
		ReasonNotEnrolled, ReasonOutsideWindow, ReasonAlreadySubmitted,
		ReasonRetakesExhausted, ReasonNotRemedialCandidate, Reason("UNKNOWN"),
	}
	for _, r := range reasons {
		if r.Message() == "" {
			t.Errorf("reason %s has no message", r)
		}
	}
}
