package handlers

import (
	"net/http"

	"fitpro-backend/models"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps a service failure onto a status and error code
func respondServiceError(c *gin.Context, err error) {
	status, code := statusForKind(models.KindOf(err))
	respondError(c, status, code, models.Message(err))
}

func statusForKind(kind models.Kind) (int, string) {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest, "INVALID_REQUEST"
	case models.KindUnauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case models.KindPermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED"
	case models.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case models.KindConflict:
		return http.StatusConflict, "CONFLICT"
	case models.KindRateLimited:
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case models.KindBusy:
		return http.StatusConflict, "OPERATION_IN_FLIGHT"
	case models.KindTransport:
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	case models.KindProviderPolicyBlock:
		return http.StatusUnprocessableEntity, "PROMPT_BLOCKED"
	case models.KindConfiguration:
		return http.StatusServiceUnavailable, "NOT_CONFIGURED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
