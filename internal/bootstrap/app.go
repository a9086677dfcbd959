package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"ngmi-backend/internal/applications"
	"ngmi-backend/internal/dashboard"
	"ngmi-backend/internal/jobs"
	"ngmi-backend/internal/resumes"
	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/scoring/gemini"
	"ngmi-backend/internal/scoring/openai"
	"ngmi-backend/internal/shared/config"
	"ngmi-backend/internal/shared/server"
	"ngmi-backend/internal/shared/server/middleware"
	"ngmi-backend/internal/shared/storage/db"
	"ngmi-backend/internal/shared/storage/object"
	localstore "ngmi-backend/internal/shared/storage/object/local"
	s3store "ngmi-backend/internal/shared/storage/object/s3"
	"ngmi-backend/internal/shared/telemetry"
	"ngmi-backend/internal/users"
)

const (
	StoreKindPostgres = "postgres"
	StoreKindMemory   = "memory"
)

// App holds the process-wide dependencies. The composition root owns the
// pool and hands the same handle to every repository.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Handle    *db.Handle
	StoreKind string
	Store     object.ObjectStore
	Oracle    scoring.Oracle

	UsersService        *users.Service
	JobsService         *jobs.Service
	ResumesService      *resumes.Service
	ApplicationsService *applications.Service
	DashboardService    *dashboard.Service
}

// Build connects the store, runs migrations and wires services and routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	oracle, err := buildOracle(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Oracle: oracle,
	}
	if sqlDB != nil {
		app.Handle = db.NewHandle(sqlDB, cfg.DBRetryAttempts)
		app.StoreKind = StoreKindPostgres
	} else {
		app.StoreKind = StoreKindMemory
	}

	if err := buildServices(ctx, app); err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	deps := server.RouterDeps{
		Config:       cfg,
		StoreKind:    app.StoreKind,
		Users:        users.NewHandler(app.UsersService),
		Jobs:         jobs.NewHandler(app.JobsService),
		Resumes:      resumes.NewHandler(app.ResumesService),
		Applications: applications.NewHandler(app.ApplicationsService),
		RateLimiter:  middleware.NewRateLimiter(nil),
	}
	if app.DashboardService != nil {
		deps.Dashboard = dashboard.NewHandler(app.DashboardService)
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.ServerPool().WithEnv())
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.S3KMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildOracle picks the completer for LLM_PROVIDER. A missing key is fatal
// outside dev; in dev the service runs unscored.
func buildOracle(ctx context.Context, cfg config.Config) (scoring.Oracle, error) {
	var (
		completer scoring.Completer
		err       error
	)
	switch cfg.LLMProvider {
	case "openai":
		var c *openai.Client
		c, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err == nil {
			completer = c
		}
	case "gemini":
		var c *gemini.Client
		c, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err == nil {
			completer = c
		}
	}
	if err != nil {
		if !cfg.IsDevLike() {
			return nil, err
		}
		telemetry.Warn("bootstrap.oracle_unconfigured", map[string]any{
			"provider": cfg.LLMProvider,
			"error":    err,
		})
	}
	return scoring.NewPromptOracle(completer), nil
}

func buildServices(ctx context.Context, app *App) error {
	var (
		userRepo   users.Repo
		jobRepo    jobs.Repo
		resumeRepo resumes.Repo
		appRepo    applications.Repo
	)

	if app.Handle != nil {
		userRepo = &users.PGRepo{DB: app.Handle}
		jobRepo = &jobs.PGRepo{DB: app.Handle}
		resumeRepo = &resumes.PGRepo{DB: app.Handle}
		appRepo = &applications.PGRepo{DB: app.Handle}
		app.DashboardService = dashboard.NewService(app.Handle)
	} else {
		memUsers := users.NewMemoryRepo()
		memJobs := jobs.NewMemoryRepo()
		if err := memJobs.Seed(ctx); err != nil {
			return fmt.Errorf("seed jobs: %w", err)
		}
		memResumes := resumes.NewMemoryRepo()
		memApps := applications.NewMemoryRepo(memJobs, memResumes)

		memJobs.HasApplications = memApps.HasJob
		memResumes.DeleteDependents = memApps.DeleteByResume
		memResumes.UserExists = func(userID int64) bool {
			_, err := memUsers.GetByID(context.Background(), userID)
			return err == nil
		}

		userRepo, jobRepo, resumeRepo, appRepo = memUsers, memJobs, memResumes, memApps
	}

	app.UsersService = users.NewService(userRepo)
	app.JobsService = jobs.NewService(jobRepo)
	app.ResumesService = resumes.NewService(resumeRepo, app.Store, app.Oracle, app.UsersService)
	app.ApplicationsService = applications.NewService(appRepo, app.ResumesService, app.JobsService, app.Oracle)
	return nil
}
