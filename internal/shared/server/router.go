package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/applications"
	"ngmi-backend/internal/dashboard"
	"ngmi-backend/internal/jobs"
	"ngmi-backend/internal/resumes"
	"ngmi-backend/internal/shared/config"
	"ngmi-backend/internal/shared/metrics"
	"ngmi-backend/internal/shared/server/middleware"
	"ngmi-backend/internal/shared/server/respond"
	"ngmi-backend/internal/users"
)

// RouterDeps carries the handlers built by bootstrap. Dashboard is nil when
// the service runs on in-memory repositories.
type RouterDeps struct {
	Config       config.Config
	StoreKind    string
	Users        *users.Handler
	Jobs         *jobs.Handler
	Resumes      *resumes.Handler
	Applications *applications.Handler
	Dashboard    *dashboard.Handler
	RateLimiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "store": deps.StoreKind})
	})
	r.GET("/metrics", metrics.Handler())

	// Uploads and applies call the model, so only they are throttled.
	write := r.Group("", middleware.RateLimit(deps.RateLimiter, middleware.RateLimitRule{
		Rate:  deps.Config.WriteRateLimit,
		Burst: deps.Config.WriteRateBurst,
	}))
	deps.Applications.RegisterWriteRoutes(write)
	deps.Resumes.RegisterWriteRoutes(write)

	deps.Users.RegisterRoutes(r)
	deps.Jobs.RegisterRoutes(r)
	deps.Resumes.RegisterRoutes(r)
	deps.Applications.RegisterRoutes(r)
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
