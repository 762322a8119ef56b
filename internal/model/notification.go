package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies stored notifications.
type NotificationKind string

const (
	NotificationGradeReleased    NotificationKind = "GRADE_RELEASED"
	NotificationRemedialAssigned NotificationKind = "REMEDIAL_ASSIGNED"
)

// Notification is a stored per-student notification record.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	StudentID int              `json:"student_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	ExamID    *uuid.UUID       `json:"exam_id,omitempty"`
	AttemptID *uuid.UUID       `json:"attempt_id,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationEvent is the queue payload produced by services and drained by
// the notification worker.
type NotificationEvent struct {
	StudentID int              `json:"student_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	ExamID    *uuid.UUID       `json:"exam_id,omitempty"`
	AttemptID *uuid.UUID       `json:"attempt_id,omitempty"`
	EmittedAt time.Time        `json:"emitted_at"`
}
