package model

import (
	"time"

	"github.com/google/uuid"
)

// Student represents a student user.
type Student struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Instructor represents an instructor user.
type Instructor struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Enrollment ties a student to a course.
type Enrollment struct {
	StudentID  int       `json:"student_id"`
	CourseID   uuid.UUID `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// LoginRequest is the payload for student and instructor authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// StudentLoginResponse is returned after a successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// InstructorLoginResponse is returned after a successful instructor login.
type InstructorLoginResponse struct {
	Token      string     `json:"token"`
	Instructor Instructor `json:"instructor"`
}
