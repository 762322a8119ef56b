package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/middleware"
	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/response"
	"github.com/AhmedYossry552/examination-system/internal/service"
	"github.com/AhmedYossry552/examination-system/internal/validator"
)

// StudentHandler handles the student-facing exam endpoints: listing,
// attempt lifecycle, answers and results.
type StudentHandler struct {
	attemptService      *service.AttemptService
	remedialService     *service.RemedialService
	notificationService *service.NotificationService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	attemptService *service.AttemptService,
	remedialService *service.RemedialService,
	notificationService *service.NotificationService,
) *StudentHandler {
	return &StudentHandler{
		attemptService:      attemptService,
		remedialService:     remedialService,
		notificationService: notificationService,
	}
}

// ListExams godoc
// GET /api/v1/student/exams
// Lists exams the student can currently see, with attempt status overlaid.
func (h *StudentHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.attemptService.ListAvailableExams(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if exams == nil {
		exams = []model.AvailableExam{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// StartAttempt godoc
// POST /api/v1/student/exams/:exam_id/attempts
// Opens or resumes the student's attempt on an exam (idempotent).
func (h *StudentHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.StartAttempt(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// GetPaper godoc
// GET /api/v1/student/attempts/:attempt_id/paper
// Serves the sanitized question set of an open attempt.
func (h *StudentHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.attemptService.GetExamPaper(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, paper)
}

// UpsertAnswer godoc
// PUT /api/v1/student/attempts/:attempt_id/answers
// Records one answer; re-sending replaces the previous answer in place.
func (h *StudentHandler) UpsertAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpsertAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.attemptService.UpsertAnswer(c.Request.Context(), claims.UserID, attemptID, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// SubmitAnswers godoc
// POST /api/v1/student/attempts/:attempt_id/answers/batch
// Applies a batch of answers sequentially (not atomic across the batch).
func (h *StudentHandler) SubmitAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	saved, err := h.attemptService.SubmitAnswers(c.Request.Context(), claims.UserID, attemptID, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answers": saved})
}

// SubmitAttempt godoc
// POST /api/v1/student/attempts/:attempt_id/submit
// Closes the attempt and scores it. A repeat submit returns ALREADY_SUBMITTED.
func (h *StudentHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.SubmitAttempt(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetResult godoc
// GET /api/v1/student/attempts/:attempt_id/result
// Per-question result view; provisional while manual grading is pending.
func (h *StudentHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.GetAttemptResult(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// RemedialHistory godoc
// GET /api/v1/student/remedials
func (h *StudentHandler) RemedialHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	history, err := h.remedialService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"remedials": history})
}

// ListNotifications godoc
// GET /api/v1/student/notifications
func (h *StudentHandler) ListNotifications(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": notifications})
}

// ReadNotification godoc
// POST /api/v1/student/notifications/:notification_id/read
func (h *StudentHandler) ReadNotification(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), claims.UserID, notificationID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}
