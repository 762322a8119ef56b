package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// RemedialRepository handles remedial assignment queries: candidate
// selection, batch attempt creation and the history/progress views.
type RemedialRepository struct {
	pool *pgxpool.Pool
}

// NewRemedialRepository creates a new RemedialRepository.
func NewRemedialRepository(pool *pgxpool.Pool) *RemedialRepository {
	return &RemedialRepository{pool: pool}
}

// RemedialCandidate is a student who failed an exam and has no attempt on its
// remedial exam yet.
type RemedialCandidate struct {
	StudentID       int       `json:"student_id"`
	StudentName     string    `json:"student_name"`
	OriginAttemptID uuid.UUID `json:"origin_attempt_id"`
	OriginExamID    uuid.UUID `json:"origin_exam_id"`
	Score           float64   `json:"score"`
	Percentage      float64   `json:"percentage"`
	FailedAt        time.Time `json:"failed_at"`
}

// RemedialHistoryEntry is one remedial attempt of a student together with the
// originating attempt it follows up on.
type RemedialHistoryEntry struct {
	RemedialExamID    uuid.UUID     `json:"remedial_exam_id"`
	RemedialExamTitle string        `json:"remedial_exam_title"`
	OriginExamID      uuid.UUID     `json:"origin_exam_id"`
	OriginExamTitle   string        `json:"origin_exam_title"`
	OriginPercentage  float64       `json:"origin_percentage"`
	Attempt           model.Attempt `json:"attempt"`
}

// RemedialProgressRow compares one student's origin and remedial outcomes on
// an exam.
type RemedialProgressRow struct {
	StudentID          int                 `json:"student_id"`
	StudentName        string              `json:"student_name"`
	OriginPercentage   float64             `json:"origin_percentage"`
	RemedialStatus     model.AttemptStatus `json:"remedial_status"`
	RemedialPercentage *float64            `json:"remedial_percentage,omitempty"`
	RemedialPassed     *bool               `json:"remedial_passed,omitempty"`
}

// ListCandidates returns the students eligible for the remedial exam of
// originExamID: fully graded failures with no attempt on the remedial exam.
func (r *RemedialRepository) ListCandidates(ctx context.Context, originExamID, remedialExamID uuid.UUID) ([]RemedialCandidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (a.student_id)
		        a.student_id, s.name, a.id, a.exam_id,
		        COALESCE(a.total_score, 0), COALESCE(a.percentage, 0), a.submitted_at
		 FROM attempts a
		 JOIN students s ON s.id = a.student_id
		 WHERE a.exam_id = $1 AND a.status = $3 AND a.is_passed = FALSE
		   AND NOT EXISTS (
		       SELECT 1 FROM attempts rem
		       WHERE rem.exam_id = $2 AND rem.student_id = a.student_id
		   )
		 ORDER BY a.student_id, a.submitted_at DESC`,
		originExamID, remedialExamID, model.AttemptStatusGraded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []RemedialCandidate
	for rows.Next() {
		var c RemedialCandidate
		if err := rows.Scan(&c.StudentID, &c.StudentName, &c.OriginAttemptID, &c.OriginExamID,
			&c.Score, &c.Percentage, &c.FailedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CreateBatch creates one remedial attempt per eligible student in a single
// statement. Students who already have any attempt on the remedial exam are
// skipped, and the open-attempt unique index absorbs races with a student
// starting concurrently, so reruns create nothing. Returns the number of
// attempts created.
func (r *RemedialRepository) CreateBatch(ctx context.Context, originExamID, remedialExamID uuid.UUID, startedAt time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (exam_id, student_id, status, started_at, origin_attempt_id)
		 SELECT DISTINCT ON (a.student_id) $2, a.student_id, $4, $3, a.id
		 FROM attempts a
		 WHERE a.exam_id = $1 AND a.status = $5 AND a.is_passed = FALSE
		   AND NOT EXISTS (
		       SELECT 1 FROM attempts rem
		       WHERE rem.exam_id = $2 AND rem.student_id = a.student_id
		   )
		 ORDER BY a.student_id, a.submitted_at DESC
		 ON CONFLICT (exam_id, student_id) WHERE submitted_at IS NULL DO NOTHING`,
		originExamID, remedialExamID, startedAt,
		model.AttemptStatusStarted, model.AttemptStatusGraded)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// History lists a student's remedial attempts with their originating results.
func (r *RemedialRepository) History(ctx context.Context, studentID int) ([]RemedialHistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT re.id, re.title, oe.id, oe.title, COALESCE(orig.percentage, 0),
		        `+prefixedAttemptColumns("a")+`
		 FROM attempts a
		 JOIN exams re ON re.id = a.exam_id AND re.exam_type = $2
		 JOIN exams oe ON oe.id = re.origin_exam_id
		 JOIN attempts orig ON orig.id = a.origin_attempt_id
		 WHERE a.student_id = $1
		 ORDER BY a.started_at DESC`,
		studentID, model.ExamTypeRemedial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []RemedialHistoryEntry
	for rows.Next() {
		var e RemedialHistoryEntry
		a := &e.Attempt
		if err := rows.Scan(&e.RemedialExamID, &e.RemedialExamTitle, &e.OriginExamID, &e.OriginExamTitle,
			&e.OriginPercentage,
			&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.StartedAt, &a.SubmittedAt,
			&a.TotalScore, &a.Percentage, &a.IsPassed, &a.OriginAttemptID); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// Progress compares origin and remedial outcomes for every assigned student
// of an exam.
func (r *RemedialRepository) Progress(ctx context.Context, originExamID, remedialExamID uuid.UUID) ([]RemedialProgressRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.student_id, s.name, COALESCE(orig.percentage, 0),
		        a.status, a.percentage, a.is_passed
		 FROM attempts a
		 JOIN students s ON s.id = a.student_id
		 JOIN attempts orig ON orig.id = a.origin_attempt_id
		 WHERE a.exam_id = $1 AND orig.exam_id = $2
		 ORDER BY s.name ASC`,
		remedialExamID, originExamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []RemedialProgressRow
	for rows.Next() {
		var p RemedialProgressRow
		if err := rows.Scan(&p.StudentID, &p.StudentName, &p.OriginPercentage,
			&p.RemedialStatus, &p.RemedialPercentage, &p.RemedialPassed); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
