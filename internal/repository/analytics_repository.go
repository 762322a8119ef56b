package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/grading"
	"github.com/AhmedYossry552/examination-system/internal/model"
)

// AnalyticsRepository feeds the item-statistics computation with graded
// attempt data.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// ListAttemptScores returns the totals of every fully graded attempt on an
// exam.
func (r *AnalyticsRepository) ListAttemptScores(ctx context.Context, examID uuid.UUID) ([]grading.AttemptScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(total_score, 0)
		 FROM attempts
		 WHERE exam_id = $1 AND status = $2`,
		examID, model.AttemptStatusGraded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []grading.AttemptScore
	for rows.Next() {
		var s grading.AttemptScore
		if err := rows.Scan(&s.AttemptID, &s.TotalScore); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ListItemOutcomes returns per-question correctness for every fully graded
// attempt on an exam. Text answers count as correct when they earned at least
// half the question's marks; unanswered questions count as incorrect.
func (r *AnalyticsRepository) ListItemOutcomes(ctx context.Context, examID uuid.UUID) ([]grading.ItemOutcome, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, eq.question_id,
		        COALESCE(ans.is_correct, COALESCE(ans.marks_obtained, 0) >= eq.marks / 2)
		 FROM attempts a
		 JOIN exam_questions eq ON eq.exam_id = a.exam_id
		 LEFT JOIN answers ans ON ans.attempt_id = a.id AND ans.question_id = eq.question_id
		 WHERE a.exam_id = $1 AND a.status = $2`,
		examID, model.AttemptStatusGraded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []grading.ItemOutcome
	for rows.Next() {
		var o grading.ItemOutcome
		if err := rows.Scan(&o.AttemptID, &o.QuestionID, &o.Correct); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
