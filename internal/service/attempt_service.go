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
	"github.com/AhmedYossry552/examination-system/internal/eligibility"
	"github.com/AhmedYossry552/examination-system/internal/grading"
	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

// ExamPaper is the exam as served to a student inside an open attempt:
// sanitized questions plus whatever answers the student has recorded so far.
type ExamPaper struct {
	Attempt          model.Attempt              `json:"attempt"`
	ExamTitle        string                     `json:"exam_title"`
	DurationMinutes  int                        `json:"duration_minutes"`
	RemainingMinutes int                        `json:"remaining_minutes"`
	Questions        []model.QuestionForStudent `json:"questions"`
	Answers          []model.Answer             `json:"answers,omitempty"`
}

// AttemptService runs the attempt lifecycle: eligibility-gated start, answer
// recording, submission scoring and result reads. Expiry is resolved lazily:
// any access to an attempt whose window has elapsed auto-submits it first.
type AttemptService struct {
	cfg         *config.Config
	examRepo    *repository.ExamRepository
	attemptRepo *repository.AttemptRepository
	answerRepo  *repository.AnswerRepository
	studentRepo *repository.StudentRepository
	notifier    *Notifier
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	cfg *config.Config,
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	studentRepo *repository.StudentRepository,
	notifier *Notifier,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		cfg:         cfg,
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		studentRepo: studentRepo,
		notifier:    notifier,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// ListAvailableExams lists the exams a student can currently see.
func (s *AttemptService) ListAvailableExams(ctx context.Context, studentID int) ([]model.AvailableExam, error) {
	exams, err := s.examRepo.ListAvailableForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list available exams: %w", err)
	}
	return exams, nil
}

// StartAttempt opens (or resumes) the student's attempt on an exam.
// Re-entry onto an open attempt is idempotent and returns the same attempt;
// an expired open attempt is auto-submitted before eligibility for a fresh
// one is evaluated.
func (s *AttemptService) StartAttempt(ctx context.Context, studentID int, examID uuid.UUID) (*model.Attempt, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	open, err := s.attemptRepo.GetOpenByExamAndStudent(ctx, examID, studentID)
	switch {
	case err == nil:
		if !open.Expired(exam.DurationMinutes, now) {
			return open, nil
		}
		// Batch-assigned attempts the student never touched restart their
		// clock on first open instead of expiring unseen.
		if open.Status == model.AttemptStatusStarted && open.OriginAttemptID != nil && exam.WindowOpen(now) {
			if err := s.attemptRepo.ResetStart(ctx, open.ID, now); err != nil {
				return nil, fmt.Errorf("reset attempt start: %w", err)
			}
			open.StartedAt = now
			return open, nil
		}
		if _, err := s.finalize(ctx, exam, open, open.Deadline(exam.DurationMinutes)); err != nil {
			return nil, err
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get open attempt: %w", err)
	}

	facts, err := s.gatherFacts(ctx, exam, studentID, now)
	if err != nil {
		return nil, err
	}
	if decision := eligibility.Evaluate(facts); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, decision.Reason.Message())
	}

	attempt := &model.Attempt{
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.AttemptStatusStarted,
		StartedAt: now,
	}
	if exam.ExamType == model.ExamTypeRemedial && exam.OriginExamID != nil {
		origin, err := s.attemptRepo.GetLatestFailedGraded(ctx, *exam.OriginExamID, studentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get origin attempt: %w", err)
		}
		if origin != nil {
			attempt.OriginAttemptID = &origin.ID
		}
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a concurrent-start race; the winner's attempt is ours too.
			return s.attemptRepo.GetOpenByExamAndStudent(ctx, examID, studentID)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Str("attempt_id", attempt.ID.String()).
		Msg("Attempt started")
	s.notifier.PublishMonitor(ctx, MonitorEvent{
		Type: MonitorEventStarted, ExamID: examID, AttemptID: attempt.ID,
		StudentID: studentID, At: now,
	})
	return attempt, nil
}

// GetExamPaper serves the sanitized question set of an open attempt.
func (s *AttemptService) GetExamPaper(ctx context.Context, studentID int, attemptID uuid.UUID) (*ExamPaper, error) {
	attempt, exam, err := s.getOwnedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.requireOpen(ctx, exam, attempt, now); err != nil {
		return nil, err
	}

	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	answers, err := s.answerRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	paper := &ExamPaper{
		Attempt:          *attempt,
		ExamTitle:        exam.Title,
		DurationMinutes:  exam.DurationMinutes,
		RemainingMinutes: attempt.RemainingMinutes(exam.DurationMinutes, now),
		Questions:        make([]model.QuestionForStudent, 0, len(questions)),
		Answers:          answers,
	}
	for _, q := range questions {
		paper.Questions = append(paper.Questions, model.QuestionForStudent{
			ID:           q.Question.ID,
			QuestionText: q.Question.QuestionText,
			QuestionType: q.Question.QuestionType,
			OrderNum:     q.OrderNum,
			Marks:        q.Marks,
			Options:      q.Question.Options,
		})
	}
	return paper, nil
}

// UpsertAnswer records (or replaces) the student's answer to one question.
// Keyed by (attempt, question): duplicate or retried deliveries overwrite in
// place, last write wins.
func (s *AttemptService) UpsertAnswer(ctx context.Context, studentID int, attemptID uuid.UUID, req model.UpsertAnswerRequest) (*model.Answer, error) {
	attempt, exam, err := s.getOwnedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.requireOpen(ctx, exam, attempt, now); err != nil {
		return nil, err
	}

	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	if err := validateAnswerShape(questions, req); err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.Upsert(ctx, attemptID, req.QuestionID, req.SelectedOptionID, req.AnswerText, now)
	if err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	if attempt.Status == model.AttemptStatusStarted {
		if err := s.attemptRepo.MarkInProgress(ctx, attemptID); err != nil {
			return nil, fmt.Errorf("mark in progress: %w", err)
		}
	}

	s.notifier.PublishMonitor(ctx, MonitorEvent{
		Type: MonitorEventAnswered, ExamID: exam.ID, AttemptID: attemptID,
		StudentID: studentID, QuestionID: &req.QuestionID, At: now,
	})
	return answer, nil
}

// SubmitAnswers applies a batch of answer upserts sequentially. The batch is
// not atomic: the first failure stops processing and leaves earlier items
// recorded.
func (s *AttemptService) SubmitAnswers(ctx context.Context, studentID int, attemptID uuid.UUID, req model.SubmitAnswersRequest) ([]model.Answer, error) {
	saved := make([]model.Answer, 0, len(req.Answers))
	for _, item := range req.Answers {
		answer, err := s.UpsertAnswer(ctx, studentID, attemptID, item)
		if err != nil {
			return saved, fmt.Errorf("question %s: %w", item.QuestionID, err)
		}
		saved = append(saved, *answer)
	}
	return saved, nil
}

// SubmitAttempt closes the attempt and runs the scoring engine over its
// answers. A repeated submit fails with ErrAlreadySubmitted and changes
// nothing. Submission after the deadline is accepted but stamped at the
// deadline, with only the answers recorded in time.
func (s *AttemptService) SubmitAttempt(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, exam, err := s.getOwnedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.SubmittedAt != nil {
		return nil, ErrAlreadySubmitted
	}

	now := time.Now()
	submittedAt := now
	if attempt.Expired(exam.DurationMinutes, now) {
		submittedAt = attempt.Deadline(exam.DurationMinutes)
	}
	return s.finalize(ctx, exam, attempt, submittedAt)
}

// GetAttemptResult builds the per-question result view of an attempt.
// While text answers await grading the totals are provisional (pending
// questions contribute 0) and the pass flag is withheld.
func (s *AttemptService) GetAttemptResult(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.AttemptResult, error) {
	attempt, exam, err := s.getOwnedAttempt(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.buildResult(ctx, exam, attempt)
}

// GetAttemptResultForInstructor is the ownership-free variant serving
// instructor views.
func (s *AttemptService) GetAttemptResultForInstructor(ctx context.Context, attemptID uuid.UUID) (*model.AttemptResult, error) {
	attempt, exam, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.buildResult(ctx, exam, attempt)
}

func (s *AttemptService) buildResult(ctx context.Context, exam *model.Exam, attempt *model.Attempt) (*model.AttemptResult, error) {
	now := time.Now()
	if attempt.Expired(exam.DurationMinutes, now) {
		updated, err := s.finalize(ctx, exam, attempt, attempt.Deadline(exam.DurationMinutes))
		if err != nil {
			return nil, err
		}
		attempt = updated
	}

	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	answers, err := s.answerRepo.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	byQuestion := make(map[uuid.UUID]*model.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := &model.AttemptResult{
		Attempt:          *attempt,
		ExamTitle:        exam.Title,
		TotalMarks:       exam.TotalMarks,
		PassMarks:        exam.PassMarks,
		RemainingMinutes: attempt.RemainingMinutes(exam.DurationMinutes, now),
		Questions:        make([]model.QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		qr := model.QuestionResult{
			QuestionID:   q.Question.ID,
			QuestionText: q.Question.QuestionText,
			QuestionType: q.Question.QuestionType,
			OrderNum:     q.OrderNum,
			Marks:        q.Marks,
		}
		if a := byQuestion[q.Question.ID]; a != nil && a.Answered() {
			qr.Answered = true
			qr.IsCorrect = a.IsCorrect
			qr.MarksObtained = a.MarksObtained
			qr.NeedsManualGrading = a.NeedsManualGrading && a.MarksObtained == nil
			qr.SuggestedMarks = a.SuggestedMarks
			qr.InstructorComments = a.InstructorComments
			if qr.NeedsManualGrading {
				result.PendingManual++
			}
		}
		result.Questions = append(result.Questions, qr)
	}
	return result, nil
}

// finalize scores the attempt's current answers and persists the submission.
func (s *AttemptService) finalize(ctx context.Context, exam *model.Exam, attempt *model.Attempt, submittedAt time.Time) (*model.Attempt, error) {
	questions, err := s.examRepo.GetQuestionSet(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	answers, err := s.answerRepo.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	results, err := grading.ScoreAttempt(questions, answers)
	if err != nil {
		return nil, fmt.Errorf("score attempt: %w", err)
	}
	exam.ApplyDefaultPassMarks(s.cfg.Policy.PassingPercentageDefault)
	agg := grading.AggregateResults(exam, results)

	if err := s.attemptRepo.FinalizeSubmission(ctx, attempt.ID, submittedAt, results, agg); err != nil {
		return nil, fmt.Errorf("finalize submission: %w", err)
	}
	updated, err := s.attemptRepo.GetByID(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("reload attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_id", exam.ID.String()).
		Float64("total_score", agg.TotalScore).
		Int("pending_manual", agg.PendingManual).
		Msg("Attempt submitted")
	s.notifier.PublishMonitor(ctx, MonitorEvent{
		Type: MonitorEventSubmitted, ExamID: exam.ID, AttemptID: attempt.ID,
		StudentID: attempt.StudentID, At: submittedAt,
	})
	if agg.PendingManual == 0 {
		s.notifier.Enqueue(ctx, model.NotificationEvent{
			StudentID: attempt.StudentID,
			Kind:      model.NotificationGradeReleased,
			Title:     "Exam graded",
			Body:      fmt.Sprintf("Your result for %q is ready.", exam.Title),
			ExamID:    &exam.ID,
			AttemptID: &attempt.ID,
			EmittedAt: submittedAt,
		})
	}
	return updated, nil
}

// requireOpen rejects access to a closed attempt, auto-submitting it first
// when the window elapsed unnoticed.
func (s *AttemptService) requireOpen(ctx context.Context, exam *model.Exam, attempt *model.Attempt, now time.Time) error {
	if attempt.SubmittedAt != nil {
		return ErrAttemptClosed
	}
	if attempt.Expired(exam.DurationMinutes, now) {
		if _, err := s.finalize(ctx, exam, attempt, attempt.Deadline(exam.DurationMinutes)); err != nil {
			return err
		}
		return ErrAttemptClosed
	}
	return nil
}

func (s *AttemptService) getExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *AttemptService) getAttempt(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, *model.Exam, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("get attempt: %w", err)
	}
	exam, err := s.getExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, exam, nil
}

func (s *AttemptService) getOwnedAttempt(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.Attempt, *model.Exam, error) {
	attempt, exam, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.StudentID != studentID {
		return nil, nil, ErrNotAttemptOwner
	}
	return attempt, exam, nil
}

// gatherFacts loads the eligibility inputs for one (student, exam) pair.
func (s *AttemptService) gatherFacts(ctx context.Context, exam *model.Exam, studentID int, now time.Time) (eligibility.Facts, error) {
	enrolled, err := s.studentRepo.IsEnrolled(ctx, studentID, exam.CourseID)
	if err != nil {
		return eligibility.Facts{}, fmt.Errorf("check enrollment: %w", err)
	}
	submitted, err := s.attemptRepo.CountSubmitted(ctx, exam.ID, studentID)
	if err != nil {
		return eligibility.Facts{}, fmt.Errorf("count submissions: %w", err)
	}

	facts := eligibility.Facts{
		Now:               now,
		Exam:              exam,
		Enrolled:          enrolled,
		SubmittedAttempts: submitted,
		MaxRetakes:        s.cfg.Policy.MaxRemedialRetakes,
	}
	if exam.ExamType == model.ExamTypeRemedial && exam.OriginExamID != nil {
		candidate, err := s.attemptRepo.ExistsFailedGraded(ctx, *exam.OriginExamID, studentID)
		if err != nil {
			return eligibility.Facts{}, fmt.Errorf("check remedial candidacy: %w", err)
		}
		facts.RemedialCandidate = candidate
	}
	return facts, nil
}

// validateAnswerShape checks the payload against the question's declared
// type: objective questions take exactly one of their own options, text
// questions take non-empty text.
func validateAnswerShape(questions []model.ExamQuestionDetail, req model.UpsertAnswerRequest) error {
	var question *model.Question
	for i := range questions {
		if questions[i].Question.ID == req.QuestionID {
			question = &questions[i].Question
			break
		}
	}
	if question == nil {
		return ErrQuestionNotInExam
	}

	if question.QuestionType.Objective() {
		if req.SelectedOptionID == nil || req.AnswerText != nil {
			return ErrInvalidAnswer
		}
		if !question.HasOption(*req.SelectedOptionID) {
			return ErrInvalidAnswer
		}
		return nil
	}
	if req.AnswerText == nil || *req.AnswerText == "" || req.SelectedOptionID != nil {
		return ErrInvalidAnswer
	}
	return nil
}
