package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/SscSPs/cashbook_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondWithError renders err with the status and code it maps to.
// Internal messages are hidden when gin runs in release mode.
func respondWithError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.StatusFor(err)
	message := apperrors.MessageFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		if gin.Mode() == gin.ReleaseMode {
			message = "Failed to " + action
		}
	} else {
		logger.Warn("Request rejected while trying to "+action, slog.String("error", err.Error()), slog.Int("status", status))
	}

	c.JSON(status, ErrorResponse{Success: false, Code: apperrors.CodeFor(err), Message: message})
}

// respondBindError reports a malformed body or query string.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Code:    apperrors.CodeValidation,
		Message: "Invalid request format: " + err.Error(),
	})
}

// requireUserID fetches the authenticated caller or aborts with 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Code: apperrors.CodeUnauthorized, Message: "Unauthorized"})
		return "", false
	}
	return userID, true
}
