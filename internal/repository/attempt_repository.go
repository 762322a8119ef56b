package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/grading"
	"github.com/AhmedYossry552/examination-system/internal/model"
)

// AttemptRepository handles attempt data access, including the transactional
// grading writes.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// ErrAnswerAlreadyGraded reports a grading write that found the answer no
// longer awaiting manual grading, typically a concurrent grade of the same
// answer.
var ErrAnswerAlreadyGraded = errors.New("answer already graded")

const attemptColumns = `id, exam_id, student_id, status, started_at, submitted_at,
	total_score, percentage, is_passed, origin_attempt_id`

func prefixedAttemptColumns(alias string) string {
	cols := []string{"id", "exam_id", "student_id", "status", "started_at", "submitted_at",
		"total_score", "percentage", "is_passed", "origin_attempt_id"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.StartedAt, &a.SubmittedAt,
		&a.TotalScore, &a.Percentage, &a.IsPassed, &a.OriginAttemptID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt. A partial unique index guarantees at most one
// open attempt per (exam, student); a concurrent create surfaces as
// pgx.ErrNoRows, which callers resolve by refetching the open attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, student_id, status, started_at, origin_attempt_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (exam_id, student_id) WHERE submitted_at IS NULL DO NOTHING
		 RETURNING id`,
		a.ExamID, a.StudentID, a.Status, a.StartedAt, a.OriginAttemptID,
	).Scan(&a.ID)
}

// GetByID retrieves an attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, attemptID))
}

// GetOpenByExamAndStudent retrieves the student's unsubmitted attempt for an
// exam, if one exists.
func (r *AttemptRepository) GetOpenByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND submitted_at IS NULL`,
		examID, studentID))
}

// CountSubmitted counts the student's submitted attempts on an exam.
func (r *AttemptRepository) CountSubmitted(ctx context.Context, examID uuid.UUID, studentID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND submitted_at IS NOT NULL`,
		examID, studentID,
	).Scan(&n)
	return n, err
}

// ExistsFailedGraded reports whether the student has a fully graded, failed
// attempt on the given exam. Remedial candidacy is derived from this.
func (r *AttemptRepository) ExistsFailedGraded(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM attempts
		     WHERE exam_id = $1 AND student_id = $2
		       AND status = $3 AND is_passed = FALSE
		 )`, examID, studentID, model.AttemptStatusGraded,
	).Scan(&exists)
	return exists, err
}

// GetLatestFailedGraded retrieves the student's most recent fully graded,
// failed attempt on an exam.
func (r *AttemptRepository) GetLatestFailedGraded(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE exam_id = $1 AND student_id = $2
		   AND status = $3 AND is_passed = FALSE
		 ORDER BY submitted_at DESC
		 LIMIT 1`,
		examID, studentID, model.AttemptStatusGraded))
}

// ResetStart restarts the clock of an attempt the student never engaged with,
// the case of a batch-assigned attempt first opened after its nominal window.
// A no-op once any activity has moved the attempt past STARTED.
func (r *AttemptRepository) ResetStart(ctx context.Context, attemptID uuid.UUID, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET started_at = $1 WHERE id = $2 AND status = $3`,
		startedAt, attemptID, model.AttemptStatusStarted)
	return err
}

// MarkInProgress moves a freshly started attempt to IN_PROGRESS. A no-op for
// any other stored status.
func (r *AttemptRepository) MarkInProgress(ctx context.Context, attemptID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET status = $1 WHERE id = $2 AND status = $3`,
		model.AttemptStatusInProgress, attemptID, model.AttemptStatusStarted)
	return err
}

// ListSubmittedByExam retrieves all submitted or graded attempts for an exam.
func (r *AttemptRepository) ListSubmittedByExam(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE exam_id = $1 AND submitted_at IS NOT NULL
		 ORDER BY submitted_at ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// FinalizeSubmission persists the scoring results of a submission in one
// transaction: per-answer marks plus the attempt's status and aggregate.
func (r *AttemptRepository) FinalizeSubmission(ctx context.Context, attemptID uuid.UUID, submittedAt time.Time, results []grading.Result, agg grading.Aggregate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, res := range results {
		if !res.Answered {
			continue // no stored row to update
		}
		if _, err := tx.Exec(ctx,
			`UPDATE answers
			 SET is_correct = $1, marks_obtained = $2, needs_manual_grading = $3,
			     similarity_score = $4, suggested_marks = $5
			 WHERE attempt_id = $6 AND question_id = $7`,
			res.IsCorrect, res.MarksObtained, res.NeedsManualGrading,
			res.Similarity, res.SuggestedMarks, attemptID, res.QuestionID,
		); err != nil {
			return fmt.Errorf("update answer %s: %w", res.QuestionID, err)
		}
	}

	status := model.AttemptStatusSubmitted
	if agg.PendingManual == 0 {
		status = model.AttemptStatusGraded
	}
	if _, err := tx.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, submitted_at = $2, total_score = $3, percentage = $4, is_passed = $5
		 WHERE id = $6`,
		status, submittedAt, agg.TotalScore, agg.Percentage, agg.IsPassed, attemptID,
	); err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}

	return tx.Commit(ctx)
}

// GradeTextAnswer applies an instructor's grade to a text answer and
// re-aggregates the attempt inside one transaction. The attempt row is locked
// so concurrent grades of different questions on the same attempt serialize;
// recompute receives the fresh full answer set and returns the new aggregate.
func (r *AttemptRepository) GradeTextAnswer(
	ctx context.Context,
	attemptID, answerID uuid.UUID,
	marks float64,
	comments *string,
	gradedAt time.Time,
	recompute func(answers []model.Answer) (grading.Aggregate, error),
) (*model.Attempt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT 1 FROM attempts WHERE id = $1 FOR UPDATE`, attemptID); err != nil {
		return nil, fmt.Errorf("lock attempt: %w", err)
	}

	// The predicate decides the race between two grades of the same answer:
	// only the first write finds the answer still pending.
	tag, err := tx.Exec(ctx,
		`UPDATE answers
		 SET marks_obtained = $1, needs_manual_grading = FALSE,
		     instructor_comments = $2, graded_at = $3
		 WHERE id = $4 AND needs_manual_grading = TRUE AND marks_obtained IS NULL`,
		marks, comments, gradedAt, answerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAnswerAlreadyGraded
	}

	rows, err := tx.Query(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE attempt_id = $1`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answers, err := collectAnswers(rows)
	if err != nil {
		return nil, err
	}

	agg, err := recompute(answers)
	if err != nil {
		return nil, err
	}

	status := model.AttemptStatusSubmitted
	if agg.PendingManual == 0 {
		status = model.AttemptStatusGraded
	}
	attempt, err := scanAttempt(tx.QueryRow(ctx,
		`UPDATE attempts
		 SET status = $1, total_score = $2, percentage = $3, is_passed = $4
		 WHERE id = $5
		 RETURNING `+attemptColumns,
		status, agg.TotalScore, agg.Percentage, agg.IsPassed, attemptID,
	))
	if err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return attempt, nil
}
