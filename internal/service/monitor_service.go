package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/integrity"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// ExamIntegrityReport aggregates the suspicious-activity reports of an exam's
// submitted attempts, highest risk first.
type ExamIntegrityReport struct {
	ExamID      uuid.UUID          `json:"exam_id"`
	Attempts    []integrity.Report `json:"attempts"`
	HighCount   int                `json:"high_count"`
	MediumCount int                `json:"medium_count"`
	LowCount    int                `json:"low_count"`
}

// MonitorService derives suspicious-activity reports for instructor review.
// Reports are computed on demand from the stored answer trail; nothing is
// persisted and scoring is never affected.
type MonitorService struct {
	policy      integrity.Policy
	examRepo    *repository.ExamRepository
	attemptRepo *repository.AttemptRepository
	answerRepo  *repository.AnswerRepository
	log         zerolog.Logger
}

// NewMonitorService creates a new MonitorService with thresholds taken from
// the loaded configuration.
func NewMonitorService(
	cfg *config.Config,
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	log zerolog.Logger,
) *MonitorService {
	return &MonitorService{
		policy: integrity.Policy{
			RapidAnswerGap:           time.Duration(cfg.Policy.RapidAnswerGapSeconds) * time.Second,
			RapidAnswerFlagCount:     cfg.Policy.RapidAnswerFlagCount,
			BiasMinAnswers:           cfg.Policy.BiasMinAnswers,
			BiasRatio:                cfg.Policy.BiasRatio,
			QuickSubmitRatio:         cfg.Policy.QuickSubmitRatio,
			QuickSubmitAnsweredRatio: cfg.Policy.QuickSubmitAnsweredRatio,
		},
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		log:         log.With().Str("component", "monitor_service").Logger(),
	}
}

// AttemptReport analyzes a single attempt.
func (s *MonitorService) AttemptReport(ctx context.Context, attemptID uuid.UUID) (*integrity.Report, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	exam, err := s.examRepo.GetByID(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	answers, err := s.answerRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	rep := integrity.Analyze(s.policy, exam, attempt, questions, answers)
	return &rep, nil
}

// ExamReport analyzes every submitted attempt of an exam.
func (s *MonitorService) ExamReport(ctx context.Context, examID uuid.UUID) (*ExamIntegrityReport, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	questions, err := s.examRepo.GetQuestionSet(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	attempts, err := s.attemptRepo.ListSubmittedByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	out := &ExamIntegrityReport{ExamID: examID, Attempts: make([]integrity.Report, 0, len(attempts))}
	for i := range attempts {
		answers, err := s.answerRepo.ListByAttempt(ctx, attempts[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list answers for %s: %w", attempts[i].ID, err)
		}
		rep := integrity.Analyze(s.policy, exam, &attempts[i], questions, answers)
		out.Attempts = append(out.Attempts, rep)
		switch rep.RiskLevel {
		case integrity.RiskHigh:
			out.HighCount++
		case integrity.RiskMedium:
			out.MediumCount++
		default:
			out.LowCount++
		}
	}

	rank := map[integrity.RiskLevel]int{integrity.RiskHigh: 0, integrity.RiskMedium: 1, integrity.RiskLow: 2}
	sort.SliceStable(out.Attempts, func(i, j int) bool {
		return rank[out.Attempts[i].RiskLevel] < rank[out.Attempts[j].RiskLevel]
	})
	return out, nil
}
