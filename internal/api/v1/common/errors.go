package common

import (
	"errors"
	"net/http"
	"promptops-backend/internal/lifecycle"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// RespondError writes the response for an error returned by the services.
// Unexpected errors are attached to the context for the request logger and
// answered with a generic message.
func RespondError(c *gin.Context, err error) {
	var verr *lifecycle.ValidationError
	if errors.As(err, &verr) {
		utils.RespondValidationErrors(c, verr.Fields)
		return
	}

	status := StatusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, lifecycle.ErrCycleDetected):
		_ = c.Error(err)
		message = "Version lineage is inconsistent"
	case status == http.StatusInternalServerError:
		_ = c.Error(err)
		message = "Internal server error"
	}

	utils.Fail(c, status, message)
}

// StatusFor maps a service or lifecycle error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrVersionNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTemplateNameExists),
		errors.Is(err, services.ErrVersionNumberExists),
		errors.Is(err, services.ErrStatusConflict),
		errors.Is(err, services.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrVersionNotEditable),
		errors.Is(err, services.ErrCrossTemplateParent),
		errors.Is(err, services.ErrCrossTemplateCompare),
		errors.Is(err, services.ErrRollbackArchived):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDenylistUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
