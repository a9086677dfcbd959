package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/shared/metrics"
	"ngmi-backend/internal/shared/server/respond"
	"ngmi-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error body. The panic is logged
// with whatever ids the handler had set before it failed.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		fields := map[string]any{
			"request_id": RequestIDFromContext(c),
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"error":      rec,
			"stack":      string(debug.Stack()),
		}
		for _, key := range contextIDKeys {
			if v, ok := c.Get(key); ok {
				fields[snake(key)] = v
			}
		}
		telemetry.Error("http.panic", fields)
		metrics.IncPanicRecovered()
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	})
}
