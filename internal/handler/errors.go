package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedYossry552/examination-system/internal/response"
	"github.com/AhmedYossry552/examination-system/internal/service"
)

// failFromService maps engine errors onto HTTP statuses and response codes.
// The error's own message is surfaced for conditions where the generic code
// message loses detail (eligibility reasons, marks bounds).
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrAnswerNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotEligible):
		response.FailWithMessage(c, http.StatusForbidden, response.ErrNotEligible, err.Error())
	case errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAttemptClosed):
		response.Fail(c, http.StatusConflict, response.ErrAttemptClosed)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrInvalidAnswer), errors.Is(err, service.ErrQuestionNotInExam):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswerShape)
	case errors.Is(err, service.ErrGradingConflict):
		response.Fail(c, http.StatusConflict, response.ErrGradingConflict)
	case errors.Is(err, service.ErrMarksOutOfRange):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, service.ErrNoRemedialExam):
		response.FailWithMessage(c, http.StatusNotFound, response.ErrNotFound, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
