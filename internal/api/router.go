package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talentdesk/ats-system/internal/api/handler"
	"github.com/talentdesk/ats-system/internal/api/middleware"
	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
	"github.com/talentdesk/ats-system/internal/core/service"
	mongorepo "github.com/talentdesk/ats-system/internal/infrastructure/db/mongo"
	"github.com/talentdesk/ats-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The resume store and the status-change publisher are constructed by the
// caller so their lifecycles (worker shutdown, remote credentials) stay out
// of the routing layer.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	resumes ports.ResumeStore,
	publisher ports.StatusChangePublisher,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("ats"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	jobRepo := mongorepo.NewJobRepository(db)
	appRepo := mongorepo.NewApplicationRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	jobService := service.NewJobService(jobRepo, appRepo, log)
	appService := service.NewApplicationService(appRepo, jobRepo, resumes, publisher, cfg.LockTerminalStatuses, log)

	authHandler := handler.NewAuthHandler(authService)
	jobHandler := handler.NewJobHandler(jobService)
	appHandler := handler.NewApplicationHandler(appService, resumes)

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authRequired)
	auth.PUT("/profile", authHandler.UpdateProfile, authRequired)
	auth.PUT("/users/:id/role", authHandler.SetRole, authRequired, adminOnly)

	// --- Job routes ---
	jobs := v1.Group("/jobs")
	jobs.GET("", jobHandler.List)
	jobs.GET("/admin/all", jobHandler.AdminList, authRequired, adminOnly)
	jobs.GET("/:id", jobHandler.Get)
	jobs.POST("", jobHandler.Create, authRequired, adminOnly)
	jobs.PUT("/:id", jobHandler.Update, authRequired, adminOnly)
	jobs.DELETE("/:id", jobHandler.Delete, authRequired, adminOnly)

	// --- Application routes ---
	apps := v1.Group("/applications", authRequired)
	apps.POST("", appHandler.Submit)
	apps.GET("/me", appHandler.ListMine)
	apps.GET("/:id/resume", appHandler.DownloadResume)
	apps.GET("", appHandler.List, adminOnly)
	apps.PUT("/:id/status", appHandler.UpdateStatus, adminOnly)
	apps.GET("/analytics/jobs", appHandler.Analytics, adminOnly)
	apps.GET("/export/csv", appHandler.ExportCSV, adminOnly)

	return e
}
