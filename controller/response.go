package controller

import (
	"errors"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindRequest decodes the JSON body into req and validates it. It writes the
// 400 response itself and returns false when the request is rejected.
func bindRequest(c *gin.Context, v *validator.Validate, log logger.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warn("Failed to bind JSON:", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Invalid request",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: err.Error(),
			},
		})
		return false
	}

	if err := v.Struct(req); err != nil {
		log.Warn("Validation failed:", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Validation failed",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: formatValidationErrors(err),
				Field:   firstInvalidField(err),
			},
		})
		return false
	}
	return true
}

// respondSuccess writes a success envelope
func respondSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, models.APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// respondError maps a service error onto a status code and error envelope.
// Unclassified errors are logged and reported without their detail.
func respondError(c *gin.Context, log logger.Logger, message string, err error) {
	code, apiErr := classifyError(err)
	if code == http.StatusInternalServerError {
		log.Error(message+":", err)
	}
	c.JSON(code, models.APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Error:   apiErr,
	})
}

func classifyError(err error) (int, *models.APIError) {
	var (
		invalidRef      *models.InvalidReferenceError
		notFound        *models.NotFoundError
		alreadyInactive *models.AlreadyInactiveError
		activeMembers   *models.HasActiveMembersError
		activeProjects  *models.HasActiveProjectsError
		inactiveTarget  *models.InactiveTargetUpdateError
		duplicate       *models.DuplicateError
		invalid         *models.ValidationError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, &models.APIError{Type: "ValidationError", Details: err.Error(), Field: invalid.Field}
	case errors.As(err, &invalidRef):
		return http.StatusNotFound, &models.APIError{Type: "InvalidReference", Details: err.Error(), Field: invalidRef.Field}
	case errors.As(err, &notFound):
		return http.StatusNotFound, &models.APIError{Type: "NotFound", Details: err.Error()}
	case errors.As(err, &alreadyInactive):
		return http.StatusConflict, &models.APIError{Type: "AlreadyInactive", Details: err.Error()}
	case errors.As(err, &activeMembers):
		return http.StatusConflict, &models.APIError{Type: "HasActiveMembers", Details: err.Error()}
	case errors.As(err, &activeProjects):
		return http.StatusConflict, &models.APIError{Type: "HasActiveProjects", Details: err.Error()}
	case errors.As(err, &inactiveTarget):
		return http.StatusConflict, &models.APIError{Type: "InactiveTargetUpdate", Details: err.Error()}
	case errors.As(err, &duplicate):
		return http.StatusConflict, &models.APIError{Type: "Duplicate", Details: err.Error(), Field: duplicate.Field}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, &models.APIError{Type: "Conflict", Details: "the record was modified concurrently, retry the request"}
	default:
		return http.StatusInternalServerError, &models.APIError{Type: "InternalError", Details: "an unexpected error occurred"}
	}
}
