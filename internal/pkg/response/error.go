package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Kind    apperror.Kind `json:"kind"`
	Details string        `json:"details,omitempty"`
}

// Error sends a JSON error response.
// AppErrors carry their own status and kind; anything else is logged and
// reported as a 500 without leaking the cause.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Kind: appErr.Kind})
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("err", err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Kind:  apperror.KindInternal,
	})
}

// BindError reports a request that failed binding or static validation.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request",
		Kind:    apperror.KindValidation,
		Details: err.Error(),
	})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
