package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NomadCrew/itinerary-builder/errors"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API response.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Details errors.FieldErrors `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached to the gin context. Handlers
// report failures with c.Error and return without writing a body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			if appError.Retry > 0 {
				c.Header("Retry-After", strconv.Itoa(appError.Retry))
			}
			response := ErrorResponse{Error: appError.Message}
			if len(appError.Fields) > 0 {
				response.Details = appError.Fields
			}
			c.JSON(statusCode, response)
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input data"})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		message := "Internal Server Error"
		if gin.IsDebugging() {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
	}
}
