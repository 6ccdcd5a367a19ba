package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classmood/moodgrid-api/api/swagger"
	"github.com/classmood/moodgrid-api/internal/handler"
	"github.com/classmood/moodgrid-api/internal/middleware"
	"github.com/classmood/moodgrid-api/internal/models"
	"github.com/classmood/moodgrid-api/internal/repository"
	"github.com/classmood/moodgrid-api/internal/service"
	"github.com/classmood/moodgrid-api/pkg/cache"
	"github.com/classmood/moodgrid-api/pkg/config"
	"github.com/classmood/moodgrid-api/pkg/database"
	"github.com/classmood/moodgrid-api/pkg/logger"
	corsmiddleware "github.com/classmood/moodgrid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classmood/moodgrid-api/pkg/middleware/requestid"
	"github.com/classmood/moodgrid-api/pkg/storage"
)

// @title MoodGrid API
// @version 1.0.0
// @description Classroom mood tracking and statistics
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	minigameRepo := repository.NewMinigameRepository(redisClient)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "moodgrid-api",
	})
	gridSvc := service.NewLabelGridService(cfg.Grid.CSVPath, logr)
	sessionSvc := service.NewSessionService(sessionRepo, logr, cfg.Sessions.PinAttempts)
	submissionSvc := service.NewSubmissionService(submissionRepo, sessionSvc, gridSvc, cacheSvc, logr, cfg.Throttle.Cooldown)
	authzSvc := service.NewAuthzService(groupRepo, sessionRepo)
	statsSvc := service.NewStatsService(submissionRepo, authzSvc, cacheSvc, metricsSvc, logr, cfg.Stats.CacheTTL)
	groupSvc := service.NewGroupService(groupRepo, userRepo, cacheSvc, validate, logr)
	minigameSvc := service.NewMinigameService(userRepo, minigameRepo, validate, logr)

	var reportSvc *service.ReportService
	var reportStore *storage.LocalStorage
	if cfg.Reports.Enabled {
		reportStore, err = storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(statsSvc, reportStore, signer, validate, logr, cfg.Reports.WorkerConcurrency, cfg.Reports.WorkerRetries)
		reportSvc.Start(ctx)
		defer reportSvc.Stop()

		// Report files outlive their signed links by one TTL at most.
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				removed, err := reportStore.CleanupOlderThan(2 * cfg.Reports.SignedURLTTL)
				if err != nil {
					logr.Sugar().Warnw("report cleanup failed", "error", err)
					continue
				}
				if len(removed) > 0 {
					logr.Sugar().Infow("expired report files removed", "count", len(removed))
				}
			}
		}()
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	gridHandler := handler.NewGridHandler(gridSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	minigameHandler := handler.NewMinigameHandler(minigameSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	api.GET("/grid/labels", gridHandler.Labels)

	moods := api.Group("/moods", middleware.OptionalJWT(authSvc))
	moods.POST("", submissionHandler.Submit)
	moods.GET("/latest", submissionHandler.Latest)

	stats := api.Group("/stats", middleware.JWT(authSvc))
	stats.GET("/me", statsHandler.Me)
	stats.GET("/me/export", statsHandler.ExportMe)
	stats.GET("/students/:id", statsHandler.Student)
	stats.GET("/students/:id/export", statsHandler.ExportStudent)
	stats.GET("/groups/:id", statsHandler.Group)
	stats.GET("/groups/:id/export", statsHandler.ExportGroup)
	stats.GET("/sessions/:id", statsHandler.Session)
	stats.GET("/sessions/:id/export", statsHandler.ExportSession)

	sessions := api.Group("/sessions")
	sessions.POST("/join", sessionHandler.Join)
	sessions.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleSuperAdmin), sessionHandler.Create)
	sessions.GET("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleSuperAdmin), sessionHandler.ListMine)
	sessions.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleSuperAdmin), sessionHandler.Deactivate)

	groups := api.Group("/groups", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleSuperAdmin))
	groups.POST("", groupHandler.Create)
	groups.GET("", groupHandler.ListMine)
	groups.GET("/:id/members", groupHandler.Members)
	groups.POST("/:id/members", groupHandler.AddMember)
	groups.DELETE("/:id/members/:studentId", groupHandler.RemoveMember)

	if cfg.Minigame.Enabled {
		minigame := api.Group("/minigame", middleware.JWT(authSvc))
		minigame.POST("/solves", minigameHandler.RecordSolves)
		minigame.GET("/solves", minigameHandler.Counters)
	}

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc, reportStore)
		reports := api.Group("/reports")
		reports.POST("", middleware.JWT(authSvc), reportHandler.Create)
		reports.GET("/:id", middleware.JWT(authSvc), reportHandler.Status)
		reports.GET("/download/:token", reportHandler.Download)
	}

	api.GET("/admin/metrics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
