package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// NotificationRepository handles stored notification records.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// BulkInsert writes a drained batch of queue events in one COPY.
func (r *NotificationRepository) BulkInsert(ctx context.Context, events []model.NotificationEvent) error {
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{
			e.StudentID, e.Kind, e.Title, e.Body, e.ExamID, e.AttemptID, e.EmittedAt,
		})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"notifications"},
		[]string{"student_id", "kind", "title", "body", "exam_id", "attempt_id", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert writes a single event, the per-row fallback when a COPY batch fails.
func (r *NotificationRepository) Insert(ctx context.Context, e model.NotificationEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (student_id, kind, title, body, exam_id, attempt_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.StudentID, e.Kind, e.Title, e.Body, e.ExamID, e.AttemptID, e.EmittedAt)
	return err
}

// ListByStudent retrieves a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID, limit int) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, kind, title, body, exam_id, attempt_id, read_at, created_at
		 FROM notifications
		 WHERE student_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.StudentID, &n.Kind, &n.Title, &n.Body,
			&n.ExamID, &n.AttemptID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead stamps a notification as read. A no-op when already read or owned
// by someone else.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, studentID int, readAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read_at = $1
		 WHERE id = $2 AND student_id = $3 AND read_at IS NULL`,
		readAt, notificationID, studentID)
	return err
}
