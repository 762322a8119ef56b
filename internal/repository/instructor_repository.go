package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedYossry552/examination-system/internal/model"
)

// InstructorRepository handles instructor data access.
type InstructorRepository struct {
	pool *pgxpool.Pool
}

// NewInstructorRepository creates a new InstructorRepository.
func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

// GetByID retrieves an instructor.
func (r *InstructorRepository) GetByID(ctx context.Context, instructorID int) (*model.Instructor, error) {
	i := &model.Instructor{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM instructors WHERE id = $1`, instructorID,
	).Scan(&i.ID, &i.Email, &i.Name, &i.PasswordHash, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// GetByEmail retrieves an instructor by email for authentication.
func (r *InstructorRepository) GetByEmail(ctx context.Context, email string) (*model.Instructor, error) {
	i := &model.Instructor{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM instructors WHERE email = $1`, email,
	).Scan(&i.ID, &i.Email, &i.Name, &i.PasswordHash, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Create inserts an instructor, for the bootstrap CLI.
func (r *InstructorRepository) Create(ctx context.Context, email, name, passwordHash string) (*model.Instructor, error) {
	i := &model.Instructor{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO instructors (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, name, password_hash, created_at`,
		email, name, passwordHash,
	).Scan(&i.ID, &i.Email, &i.Name, &i.PasswordHash, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}
