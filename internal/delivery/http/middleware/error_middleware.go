package middleware

import (
	"errors"
	"net/http"

	"salon-booking-backend/internal/delivery/http/response"
	"salon-booking-backend/pkg/apperror"
	"salon-booking-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if errors.Is(err, apperror.ErrSpamDetected) {
			response.Discard(c)
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logger.Log.Error("Request failed",
					"status", appErr.Code,
					"path", c.Request.URL.Path,
					"request_id", c.GetString("RequestID"),
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Errors)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		// Log the actual error server-side for debugging, but send a
		// generic message to the user to prevent information disclosure.
		logger.Log.Error("Internal Server Error",
			"path", c.Request.URL.Path,
			"request_id", c.GetString("RequestID"),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
