package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/grading"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// ExamItemStats is the per-question quality analysis of an exam.
type ExamItemStats struct {
	ExamID         uuid.UUID          `json:"exam_id"`
	GradedAttempts int                `json:"graded_attempts"`
	Items          []grading.ItemStat `json:"items"`
}

// AnalyticsService computes exam item statistics over graded attempts.
type AnalyticsService struct {
	examRepo      *repository.ExamRepository
	analyticsRepo *repository.AnalyticsRepository
	log           zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(examRepo *repository.ExamRepository, analyticsRepo *repository.AnalyticsRepository, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		examRepo:      examRepo,
		analyticsRepo: analyticsRepo,
		log:           log.With().Str("component", "analytics_service").Logger(),
	}
}

// ItemStatistics computes difficulty and discrimination per question of an
// exam from its fully graded attempts.
func (s *AnalyticsService) ItemStatistics(ctx context.Context, examID uuid.UUID) (*ExamItemStats, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	scores, err := s.analyticsRepo.ListAttemptScores(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempt scores: %w", err)
	}
	outcomes, err := s.analyticsRepo.ListItemOutcomes(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list item outcomes: %w", err)
	}

	return &ExamItemStats{
		ExamID:         examID,
		GradedAttempts: len(scores),
		Items:          grading.ItemStatistics(scores, outcomes),
	}, nil
}
