package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAttemptDeadline(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &Attempt{StartedAt: start}

	want := start.Add(45 * time.Minute)
	if got := a.Deadline(45); !got.Equal(want) {
		t.Errorf("Deadline = %v, want %v", got, want)
	}
}

func TestAttemptRemainingMinutes(t *testing.T) {
	start := time.Now()
	a := &Attempt{StartedAt: start}

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 60},
		{30*time.Minute + 30*time.Second, 29},
		{60 * time.Minute, 0},
		{90 * time.Minute, 0},
	}
	for _, tt := range tests {
		if got := a.RemainingMinutes(60, start.Add(tt.elapsed)); got != tt.want {
			t.Errorf("RemainingMinutes after %v = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestAttemptExpired(t *testing.T) {
	start := time.Now()
	a := &Attempt{StartedAt: start, Status: AttemptStatusInProgress}

	if a.Expired(60, start.Add(59*time.Minute)) {
		t.Error("attempt expired before its deadline")
	}
	if !a.Expired(60, start.Add(60*time.Minute)) {
		t.Error("attempt not expired at its deadline")
	}

	// A submitted attempt can no longer expire.
	submitted := start.Add(30 * time.Minute)
	a.SubmittedAt = &submitted
	if a.Expired(60, start.Add(2*time.Hour)) {
		t.Error("submitted attempt reported as expired")
	}
}

func TestAttemptClosed(t *testing.T) {
	start := time.Now()
	a := &Attempt{StartedAt: start, Status: AttemptStatusInProgress}

	if a.Closed(60, start.Add(time.Minute)) {
		t.Error("open attempt reported closed")
	}
	if !a.Closed(60, start.Add(61*time.Minute)) {
		t.Error("expired attempt not closed")
	}

	submitted := start.Add(10 * time.Minute)
	a.SubmittedAt = &submitted
	if !a.Closed(60, start.Add(11*time.Minute)) {
		t.Error("submitted attempt not closed")
	}
}

func TestAttemptEffectiveStatus(t *testing.T) {
	start := time.Now()
	a := &Attempt{StartedAt: start, Status: AttemptStatusInProgress}

	if got := a.EffectiveStatus(60, start.Add(time.Minute)); got != AttemptStatusInProgress {
		t.Errorf("EffectiveStatus = %s, want IN_PROGRESS", got)
	}
	if got := a.EffectiveStatus(60, start.Add(2*time.Hour)); got != AttemptStatusExpired {
		t.Errorf("EffectiveStatus = %s, want EXPIRED", got)
	}

	submitted := start.Add(30 * time.Minute)
	a.SubmittedAt = &submitted
	a.Status = AttemptStatusSubmitted
	if got := a.EffectiveStatus(60, start.Add(2*time.Hour)); got != AttemptStatusSubmitted {
		t.Errorf("EffectiveStatus = %s, want SUBMITTED after submission", got)
	}
}

func TestExamWindowOpen(t *testing.T) {
	now := time.Now()
	e := &Exam{ScheduledStart: now, ScheduledEnd: now.Add(time.Hour)}

	if e.WindowOpen(now.Add(-time.Second)) {
		t.Error("window open before scheduled start")
	}
	if !e.WindowOpen(now) {
		t.Error("window closed at scheduled start")
	}
	if !e.WindowOpen(now.Add(59 * time.Minute)) {
		t.Error("window closed inside the interval")
	}
	if e.WindowOpen(now.Add(time.Hour)) {
		t.Error("window open at scheduled end")
	}
}

func TestExamApplyDefaultPassMarks(t *testing.T) {
	e := &Exam{TotalMarks: 50}
	e.ApplyDefaultPassMarks(60)
	if e.PassMarks != 30 {
		t.Errorf("PassMarks = %v, want 30", e.PassMarks)
	}

	explicit := &Exam{TotalMarks: 50, PassMarks: 20}
	explicit.ApplyDefaultPassMarks(60)
	if explicit.PassMarks != 20 {
		t.Errorf("PassMarks = %v, want explicit 20 untouched", explicit.PassMarks)
	}
}

func TestAnswerAnswered(t *testing.T) {
	empty := ""
	text := "a response"
	optionID := uuid.New()

	tests := []struct {
		name string
		a    Answer
		want bool
	}{
		{"no content", Answer{}, false},
		{"empty text", Answer{AnswerText: &empty}, false},
		{"text", Answer{AnswerText: &text}, true},
		{"option", Answer{SelectedOptionID: &optionID}, true},
	}
	for _, tt := range tests {
		if got := tt.a.Answered(); got != tt.want {
			t.Errorf("%s: Answered = %v, want %v", tt.name, got, tt.want)
		}
	}
}
