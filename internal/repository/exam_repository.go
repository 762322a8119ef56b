package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// ExamRepository handles exam and exam-question data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, course_id, title, exam_type, scheduled_start, scheduled_end,
	duration_minutes, total_marks, pass_marks, origin_exam_id, created_at, updated_at`

// GetByID retrieves a single exam.
func (r *ExamRepository) GetByID(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, examID,
	).Scan(&e.ID, &e.CourseID, &e.Title, &e.ExamType, &e.ScheduledStart, &e.ScheduledEnd,
		&e.DurationMinutes, &e.TotalMarks, &e.PassMarks, &e.OriginExamID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetRemedialForExam retrieves the remedial exam designated for a regular exam,
// if one exists.
func (r *ExamRepository) GetRemedialForExam(ctx context.Context, originExamID uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+`
		 FROM exams
		 WHERE exam_type = $1 AND origin_exam_id = $2`,
		model.ExamTypeRemedial, originExamID,
	).Scan(&e.ID, &e.CourseID, &e.Title, &e.ExamType, &e.ScheduledStart, &e.ScheduledEnd,
		&e.DurationMinutes, &e.TotalMarks, &e.PassMarks, &e.OriginExamID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListRegularExams retrieves all regular exams, optionally limited to one ID.
// The remedial batch iterates this set.
func (r *ExamRepository) ListRegularExams(ctx context.Context, examID *uuid.UUID) ([]model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE exam_type = $1`
	args := []any{model.ExamTypeRegular}
	if examID != nil {
		query += ` AND id = $2`
		args = append(args, *examID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.CourseID, &e.Title, &e.ExamType, &e.ScheduledStart, &e.ScheduledEnd,
			&e.DurationMinutes, &e.TotalMarks, &e.PassMarks, &e.OriginExamID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListAvailableForStudent retrieves exams inside their window for courses the
// student is enrolled in, with any existing attempt overlaid.
func (r *ExamRepository) ListAvailableForStudent(ctx context.Context, studentID int) ([]model.AvailableExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.course_id, e.title, e.exam_type, e.scheduled_start, e.scheduled_end,
		        e.duration_minutes, e.total_marks, e.pass_marks, e.origin_exam_id, e.created_at, e.updated_at,
		        a.id, a.status, a.total_score
		 FROM exams e
		 JOIN enrollments en ON en.course_id = e.course_id AND en.student_id = $1
		 LEFT JOIN LATERAL (
		     SELECT id, status, total_score
		     FROM attempts
		     WHERE exam_id = e.id AND student_id = $1
		     ORDER BY started_at DESC
		     LIMIT 1
		 ) a ON TRUE
		 WHERE e.scheduled_end > NOW()
		 ORDER BY e.scheduled_start ASC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.AvailableExam
	for rows.Next() {
		var ae model.AvailableExam
		if err := rows.Scan(&ae.ID, &ae.CourseID, &ae.Title, &ae.ExamType, &ae.ScheduledStart, &ae.ScheduledEnd,
			&ae.DurationMinutes, &ae.TotalMarks, &ae.PassMarks, &ae.OriginExamID, &ae.CreatedAt, &ae.UpdatedAt,
			&ae.AttemptID, &ae.AttemptStatus, &ae.TotalScore); err != nil {
			return nil, err
		}
		exams = append(exams, ae)
	}
	return exams, rows.Err()
}

// GetQuestionSet retrieves the exam's full ordered question set with options
// and model answers attached. This is the grading engine's input view.
func (r *ExamRepository) GetQuestionSet(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestionDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.course_id, q.question_text, q.question_type, q.difficulty, q.points,
		        q.model_answer_text, q.model_answer_pattern, q.model_answer_case_sensitive,
		        eq.order_num, eq.marks
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.order_num ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.ExamQuestionDetail
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var d model.ExamQuestionDetail
		var maText, maPattern *string
		var maCaseSensitive *bool
		if err := rows.Scan(&d.Question.ID, &d.Question.CourseID, &d.Question.QuestionText,
			&d.Question.QuestionType, &d.Question.Difficulty, &d.Question.Points,
			&maText, &maPattern, &maCaseSensitive,
			&d.OrderNum, &d.Marks); err != nil {
			return nil, err
		}
		if maText != nil {
			ma := &model.ModelAnswer{AnswerText: *maText}
			if maPattern != nil {
				ma.Pattern = *maPattern
			}
			if maCaseSensitive != nil {
				ma.CaseSensitive = *maCaseSensitive
			}
			d.Question.ModelAnswer = ma
		}
		index[d.Question.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach options in a second query to avoid a row-multiplying join.
	optRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.option_text, o.is_correct, o.position
		 FROM options o
		 JOIN exam_questions eq ON eq.question_id = o.question_id AND eq.exam_id = $1
		 ORDER BY o.question_id, o.position ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect, &o.Position); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionID]; ok {
			details[i].Question.Options = append(details[i].Question.Options, o)
		}
	}
	return details, optRows.Err()
}
