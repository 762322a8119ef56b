package service

import "errors"

// Engine error conditions. Handlers map these onto response codes; services
// wrap them with context via fmt.Errorf("%w: ...") where useful.
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrNotEligible       = errors.New("not eligible for this exam")
	ErrAttemptClosed     = errors.New("attempt is closed")
	ErrAlreadySubmitted  = errors.New("attempt already submitted")
	ErrInvalidAnswer     = errors.New("answer does not match the question type")
	ErrGradingConflict   = errors.New("answer is not awaiting manual grading")
	ErrMarksOutOfRange   = errors.New("marks exceed the question's maximum")
	ErrNotAttemptOwner   = errors.New("attempt belongs to another student")
	ErrNoRemedialExam    = errors.New("exam has no remedial exam configured")
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrQuestionNotInExam = errors.New("question does not belong to this exam")
)
