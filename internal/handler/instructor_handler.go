package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/response"
	"github.com/AhmedYossry552/examination-system/internal/service"
	"github.com/AhmedYossry552/examination-system/internal/validator"
)

// InstructorHandler handles the instructor endpoints: the grading queue,
// integrity reports, item statistics and remedial administration.
type InstructorHandler struct {
	attemptService   *service.AttemptService
	gradingService   *service.GradingService
	monitorService   *service.MonitorService
	remedialService  *service.RemedialService
	analyticsService *service.AnalyticsService
}

// NewInstructorHandler creates a new InstructorHandler.
func NewInstructorHandler(
	attemptService *service.AttemptService,
	gradingService *service.GradingService,
	monitorService *service.MonitorService,
	remedialService *service.RemedialService,
	analyticsService *service.AnalyticsService,
) *InstructorHandler {
	return &InstructorHandler{
		attemptService:   attemptService,
		gradingService:   gradingService,
		monitorService:   monitorService,
		remedialService:  remedialService,
		analyticsService: analyticsService,
	}
}

// PendingGrading godoc
// GET /api/v1/instructor/exams/:exam_id/pending-grading
// The manual grading queue with similarity suggestions and band summary.
func (h *InstructorHandler) PendingGrading(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	pending, err := h.gradingService.PendingTextAnswers(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, pending)
}

// GradeTextAnswer godoc
// POST /api/v1/instructor/answers/:answer_id/grade
// Confirms marks for a text answer and re-aggregates the attempt.
func (h *InstructorHandler) GradeTextAnswer(c *gin.Context) {
	answerID, err := uuid.Parse(c.Param("answer_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeTextAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.gradingService.GradeTextAnswer(c.Request.Context(), answerID, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetAttemptResult godoc
// GET /api/v1/instructor/attempts/:attempt_id/result
func (h *InstructorHandler) GetAttemptResult(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.GetAttemptResultForInstructor(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// AttemptIntegrity godoc
// GET /api/v1/instructor/attempts/:attempt_id/integrity
func (h *InstructorHandler) AttemptIntegrity(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.monitorService.AttemptReport(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// ExamIntegrity godoc
// GET /api/v1/instructor/exams/:exam_id/integrity
// Suspicious-activity reports of every submitted attempt, highest risk first.
func (h *InstructorHandler) ExamIntegrity(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.monitorService.ExamReport(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// ItemStatistics godoc
// GET /api/v1/instructor/exams/:exam_id/item-stats
func (h *InstructorHandler) ItemStatistics(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.analyticsService.ItemStatistics(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// RunRemedialAssignment godoc
// POST /api/v1/instructor/remedials/run?exam_id=...
// Triggers the assignment batch, for one exam or all regular exams.
// Idempotent: re-running creates no duplicate attempts.
func (h *InstructorHandler) RunRemedialAssignment(c *gin.Context) {
	var examID *uuid.UUID
	if raw := c.Query("exam_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		examID = &id
	}

	report, err := h.remedialService.RunAssignment(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// RemedialCandidates godoc
// GET /api/v1/instructor/exams/:exam_id/remedial/candidates
func (h *InstructorHandler) RemedialCandidates(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	candidates, err := h.remedialService.Candidates(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// RemedialProgress godoc
// GET /api/v1/instructor/exams/:exam_id/remedial/progress
func (h *InstructorHandler) RemedialProgress(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	progress, err := h.remedialService.Progress(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}
