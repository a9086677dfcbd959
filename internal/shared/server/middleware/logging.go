package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request. Handlers may set "userId",
// "applicationId" or "resumeId" on the context to have them logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for _, key := range contextIDKeys {
			if v, ok := c.Get(key); ok {
				fields[snake(key)] = v
			}
		}
		telemetry.Info("request.complete", fields)
	}
}

// contextIDKeys are the entity ids handlers record for request logs.
var contextIDKeys = []string{"userId", "applicationId", "resumeId", "jobId"}

func snake(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
