package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/grading"
	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// PendingGrading is the manual grading queue of one exam.
type PendingGrading struct {
	Summary model.PendingGradingSummary `json:"summary"`
	Answers []model.PendingTextAnswer   `json:"answers"`
}

// GradingService serves the instructor side of grading: the pending text
// answer queue with similarity suggestions, and grade confirmation with
// transactional re-aggregation.
type GradingService struct {
	cfg         *config.Config
	examRepo    *repository.ExamRepository
	attemptRepo *repository.AttemptRepository
	answerRepo  *repository.AnswerRepository
	notifier    *Notifier
	log         zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	cfg *config.Config,
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	notifier *Notifier,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		cfg:         cfg,
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		notifier:    notifier,
		log:         log.With().Str("component", "grading_service").Logger(),
	}
}

// PendingTextAnswers lists the exam's ungraded text answers with their
// similarity suggestions, banded into a summary by the configured thresholds.
func (s *GradingService) PendingTextAnswers(ctx context.Context, examID uuid.UUID) (*PendingGrading, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	rows, err := s.answerRepo.ListPendingTextByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list pending answers: %w", err)
	}

	now := time.Now()
	out := &PendingGrading{Answers: make([]model.PendingTextAnswer, 0, len(rows))}
	var simSum, marksSum float64
	for _, row := range rows {
		p := row.PendingTextAnswer
		match := grading.Similarity(model.ModelAnswer{
			AnswerText:    row.ModelAnswerText,
			Pattern:       derefString(row.ModelAnswerPattern),
			CaseSensitive: row.ModelAnswerCaseSensitive,
		}, p.AnswerText)
		p.SimilarityScore = match.Score
		p.SuggestedMarks = grading.SuggestedMarks(match.Score, p.QuestionMarks)
		p.MatchingKeywords = match.MatchedCount
		p.TotalKeywords = match.TotalKeywords
		p.HoursPending = int(now.Sub(p.AnsweredAt).Hours())
		out.Answers = append(out.Answers, p)

		simSum += p.SimilarityScore
		marksSum += p.SuggestedMarks
		switch {
		case p.SimilarityScore >= s.cfg.Policy.HighSimilarity:
			out.Summary.HighSimilarityCount++
		case p.SimilarityScore < s.cfg.Policy.LowSimilarity:
			out.Summary.LowSimilarityCount++
		default:
			out.Summary.MediumSimilarityCount++
		}
	}
	out.Summary.TotalAnswers = len(out.Answers)
	if n := len(out.Answers); n > 0 {
		out.Summary.AverageSimilarity = simSum / float64(n)
		out.Summary.AverageSuggestedMarks = marksSum / float64(n)
	}
	return out, nil
}

// GradeTextAnswer confirms the marks of one text answer and re-aggregates its
// attempt. The marks may not exceed the question's weight; an answer that is
// not awaiting manual grading is rejected. Re-aggregation recomputes from the
// full answer set inside a transaction, so grading two questions of the same
// attempt concurrently cannot lose either update.
func (s *GradingService) GradeTextAnswer(ctx context.Context, answerID uuid.UUID, req model.GradeTextAnswerRequest) (*model.Attempt, error) {
	answer, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}
	if !answer.NeedsManualGrading || answer.MarksObtained != nil {
		return nil, ErrGradingConflict
	}

	attempt, err := s.attemptRepo.GetByID(ctx, answer.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.SubmittedAt == nil {
		return nil, fmt.Errorf("%w: attempt not submitted yet", ErrGradingConflict)
	}
	exam, err := s.examRepo.GetByID(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}

	var maxMarks float64
	found := false
	for _, q := range questions {
		if q.Question.ID == answer.QuestionID {
			maxMarks = q.Marks
			found = true
			break
		}
	}
	if !found {
		return nil, ErrQuestionNotInExam
	}
	if req.Marks > maxMarks {
		return nil, fmt.Errorf("%w: max %.1f", ErrMarksOutOfRange, maxMarks)
	}

	var comments *string
	if req.Comments != "" {
		comments = &req.Comments
	}
	exam.ApplyDefaultPassMarks(s.cfg.Policy.PassingPercentageDefault)
	updated, err := s.attemptRepo.GradeTextAnswer(ctx, attempt.ID, answerID, req.Marks, comments, time.Now(),
		func(answers []model.Answer) (grading.Aggregate, error) {
			return grading.Compute(exam, questions, answers)
		})
	if err != nil {
		if errors.Is(err, repository.ErrAnswerAlreadyGraded) {
			return nil, ErrGradingConflict
		}
		return nil, fmt.Errorf("grade text answer: %w", err)
	}

	s.log.Info().
		Str("answer_id", answerID.String()).
		Str("attempt_id", attempt.ID.String()).
		Float64("marks", req.Marks).
		Msg("Text answer graded")
	if updated.Status == model.AttemptStatusGraded {
		s.notifier.Enqueue(ctx, model.NotificationEvent{
			StudentID: updated.StudentID,
			Kind:      model.NotificationGradeReleased,
			Title:     "Exam graded",
			Body:      fmt.Sprintf("Your result for %q is ready.", exam.Title),
			ExamID:    &exam.ID,
			AttemptID: &updated.ID,
			EmittedAt: time.Now(),
		})
	}
	return updated, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
