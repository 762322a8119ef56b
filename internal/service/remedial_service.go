package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// RemedialRunReport summarizes one remedial assignment run.
type RemedialRunReport struct {
	ExamsExamined   int `json:"exams_examined"`
	ExamsAssigned   int `json:"exams_assigned"`
	AttemptsCreated int `json:"attempts_created"`
	// SkippedNoRemedial counts exams without a configured remedial exam;
	// SkippedWindowClosed counts remedial exams outside their window.
	SkippedNoRemedial   int `json:"skipped_no_remedial"`
	SkippedWindowClosed int `json:"skipped_window_closed"`
}

// RemedialService runs the remedial assignment batch and serves the
// candidate, history and progress views.
type RemedialService struct {
	examRepo     *repository.ExamRepository
	remedialRepo *repository.RemedialRepository
	notifier     *Notifier
	log          zerolog.Logger
}

// NewRemedialService creates a new RemedialService.
func NewRemedialService(
	examRepo *repository.ExamRepository,
	remedialRepo *repository.RemedialRepository,
	notifier *Notifier,
	log zerolog.Logger,
) *RemedialService {
	return &RemedialService{
		examRepo:     examRepo,
		remedialRepo: remedialRepo,
		notifier:     notifier,
		log:          log.With().Str("component", "remedial_service").Logger(),
	}
}

// RunAssignment creates remedial attempts for every student who failed a
// regular exam, against the exam's designated remedial exam, provided that
// exam exists and its window is open. Limited to one exam when examID is set,
// otherwise it sweeps all regular exams. The run is idempotent: students who
// already have a remedial attempt are skipped, so repeating it creates
// nothing new. Safe to overlap with live student activity; only fully graded
// attempts are read.
func (s *RemedialService) RunAssignment(ctx context.Context, examID *uuid.UUID) (*RemedialRunReport, error) {
	exams, err := s.examRepo.ListRegularExams(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list regular exams: %w", err)
	}
	if examID != nil && len(exams) == 0 {
		return nil, ErrExamNotFound
	}

	now := time.Now()
	report := &RemedialRunReport{ExamsExamined: len(exams)}
	for _, exam := range exams {
		remedial, err := s.examRepo.GetRemedialForExam(ctx, exam.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				report.SkippedNoRemedial++
				continue
			}
			return nil, fmt.Errorf("get remedial exam for %s: %w", exam.ID, err)
		}
		if !remedial.WindowOpen(now) {
			report.SkippedWindowClosed++
			continue
		}

		candidates, err := s.remedialRepo.ListCandidates(ctx, exam.ID, remedial.ID)
		if err != nil {
			return nil, fmt.Errorf("list candidates for %s: %w", exam.ID, err)
		}
		if len(candidates) == 0 {
			continue
		}

		created, err := s.remedialRepo.CreateBatch(ctx, exam.ID, remedial.ID, now)
		if err != nil {
			return nil, fmt.Errorf("create remedial attempts for %s: %w", exam.ID, err)
		}
		if created == 0 {
			continue
		}
		report.ExamsAssigned++
		report.AttemptsCreated += created

		for _, c := range candidates {
			s.notifier.Enqueue(ctx, model.NotificationEvent{
				StudentID: c.StudentID,
				Kind:      model.NotificationRemedialAssigned,
				Title:     "Remedial exam assigned",
				Body:      fmt.Sprintf("You have been assigned %q following %q.", remedial.Title, exam.Title),
				ExamID:    &remedial.ID,
				EmittedAt: now,
			})
		}
		s.log.Info().
			Str("exam_id", exam.ID.String()).
			Str("remedial_exam_id", remedial.ID.String()).
			Int("created", created).
			Msg("Remedial attempts assigned")
	}
	return report, nil
}

// Candidates lists the students currently eligible for an exam's remedial.
func (s *RemedialService) Candidates(ctx context.Context, examID uuid.UUID) ([]repository.RemedialCandidate, error) {
	remedial, err := s.examRepo.GetRemedialForExam(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRemedialExam
		}
		return nil, fmt.Errorf("get remedial exam: %w", err)
	}
	candidates, err := s.remedialRepo.ListCandidates(ctx, examID, remedial.ID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

// History lists a student's remedial attempts with origin context.
func (s *RemedialService) History(ctx context.Context, studentID int) ([]repository.RemedialHistoryEntry, error) {
	history, err := s.remedialRepo.History(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("remedial history: %w", err)
	}
	return history, nil
}

// Progress compares origin and remedial outcomes across an exam's assigned
// students.
func (s *RemedialService) Progress(ctx context.Context, examID uuid.UUID) ([]repository.RemedialProgressRow, error) {
	remedial, err := s.examRepo.GetRemedialForExam(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRemedialExam
		}
		return nil, fmt.Errorf("get remedial exam: %w", err)
	}
	progress, err := s.remedialRepo.Progress(ctx, examID, remedial.ID)
	if err != nil {
		return nil, fmt.Errorf("remedial progress: %w", err)
	}
	return progress, nil
}
