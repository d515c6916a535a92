package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrPartNotFound),
		errors.Is(err, services.ErrStageNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrStageExists):
		apierrors.Conflict(c, err.Error())
	case services.IsValidationError(err):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrRecalculationFailed):
		log.Printf("recalculation failed: %v", err)
		apierrors.RecalculationFailed(c, "")
	default:
		log.Printf("request failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
