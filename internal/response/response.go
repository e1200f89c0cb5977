// Package response writes the {success, data, message, errors} envelope every
// endpoint returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
)

type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Error renders err with the status of its kind. Anything that is not an
// *apperr.Error is reported as a generic internal error and only logged.
func Error(c *gin.Context, err error) {
	status, body := render(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(status, body)
}

// Abort is Error for middleware: the rest of the chain is skipped.
func Abort(c *gin.Context, err error) {
	status, body := render(err)
	c.AbortWithStatusJSON(status, body)
}

func render(err error) (int, Envelope) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	return apperr.HTTPStatus(appErr.Kind), Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	}
}
