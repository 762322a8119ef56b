package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// AnswerRepository handles answer data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

const answerColumns = `id, attempt_id, question_id, selected_option_id, answer_text,
	answered_at, is_correct, marks_obtained, needs_manual_grading,
	similarity_score, suggested_marks, instructor_comments, graded_at`

func scanAnswer(row pgx.Row) (*model.Answer, error) {
	a := &model.Answer{}
	err := row.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.SelectedOptionID, &a.AnswerText,
		&a.AnsweredAt, &a.IsCorrect, &a.MarksObtained, &a.NeedsManualGrading,
		&a.SimilarityScore, &a.SuggestedMarks, &a.InstructorComments, &a.GradedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectAnswers(rows pgx.Rows) ([]model.Answer, error) {
	defer rows.Close()
	var answers []model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

// Upsert saves a student's answer for a question, replacing any previous
// answer for the same (attempt, question) pair. Last write wins and the
// answered timestamp is refreshed on every write.
func (r *AnswerRepository) Upsert(ctx context.Context, attemptID, questionID uuid.UUID, selectedOptionID *uuid.UUID, answerText *string, answeredAt time.Time) (*model.Answer, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, selected_option_id, answer_text, answered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET selected_option_id = EXCLUDED.selected_option_id,
		     answer_text = EXCLUDED.answer_text,
		     answered_at = EXCLUDED.answered_at
		 RETURNING `+answerColumns,
		attemptID, questionID, selectedOptionID, answerText, answeredAt))
}

// GetByID retrieves an answer.
func (r *AnswerRepository) GetByID(ctx context.Context, answerID uuid.UUID) (*model.Answer, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE id = $1`, answerID))
}

// ListByAttempt retrieves all answers of an attempt in answer order.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+answerColumns+`
		 FROM answers
		 WHERE attempt_id = $1
		 ORDER BY answered_at ASC`, attemptID)
	if err != nil {
		return nil, err
	}
	return collectAnswers(rows)
}

// PendingTextRow is one pending text answer as stored, plus the pieces of the
// model answer the grading service needs to rebuild the keyword comparison.
type PendingTextRow struct {
	model.PendingTextAnswer
	ModelAnswerPattern       *string
	ModelAnswerCaseSensitive bool
}

// ListPendingTextByExam retrieves the manual grading queue for an exam:
// text answers of submitted attempts that still await an instructor grade,
// oldest submission first.
func (r *AnswerRepository) ListPendingTextByExam(ctx context.Context, examID uuid.UUID) ([]PendingTextRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ans.id, ans.attempt_id, ans.question_id, at.student_id, s.name,
		        q.question_text, eq.marks, COALESCE(ans.answer_text, ''), ans.answered_at,
		        COALESCE(ans.similarity_score, 0), COALESCE(ans.suggested_marks, 0),
		        COALESCE(q.model_answer_text, ''), q.model_answer_pattern,
		        COALESCE(q.model_answer_case_sensitive, FALSE)
		 FROM answers ans
		 JOIN attempts at ON at.id = ans.attempt_id
		 JOIN students s ON s.id = at.student_id
		 JOIN questions q ON q.id = ans.question_id
		 JOIN exam_questions eq ON eq.exam_id = at.exam_id AND eq.question_id = ans.question_id
		 WHERE at.exam_id = $1
		   AND at.submitted_at IS NOT NULL
		   AND ans.needs_manual_grading = TRUE
		   AND ans.marks_obtained IS NULL
		 ORDER BY at.submitted_at ASC, ans.answered_at ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingTextRow
	for rows.Next() {
		var p PendingTextRow
		if err := rows.Scan(&p.AnswerID, &p.AttemptID, &p.QuestionID, &p.StudentID, &p.StudentName,
			&p.QuestionText, &p.QuestionMarks, &p.AnswerText, &p.AnsweredAt,
			&p.SimilarityScore, &p.SuggestedMarks,
			&p.ModelAnswerText, &p.ModelAnswerPattern, &p.ModelAnswerCaseSensitive); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// CountPendingByAttempt counts the ungraded text answers of one attempt.
func (r *AnswerRepository) CountPendingByAttempt(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM answers
		 WHERE attempt_id = $1 AND needs_manual_grading = TRUE AND marks_obtained IS NULL`,
		attemptID,
	).Scan(&n)
	return n, err
}
