package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/response"
)

// Recovery turns a handler panic into the generic 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			reqLog := log
			if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
				reqLog = *l
			}
			reqLog.Error().
				Str("panic", fmt.Sprint(r)).
				Str("path", c.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			response.Abort(c, apperr.Internal(fmt.Errorf("panic: %v", r)))
		}()
		c.Next()
	}
}
